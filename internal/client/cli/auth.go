package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/resumecli/internal/client/client"
	"github.com/dmitrijs2005/resumecli/internal/client/forms"
	"github.com/dmitrijs2005/resumecli/internal/client/session"
	"github.com/dmitrijs2005/resumecli/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	loginFields    = []string{forms.FieldEmail, forms.FieldPassword}
	registerFields = []string{forms.FieldFullName, forms.FieldEmail, forms.FieldPassword, forms.FieldConfirmPassword}
)

// Register prompts for name, email and a confirmed password, checks them
// locally and creates the account. On success the dashboard is shown.
func (a *App) Register(ctx context.Context) error {
	if a.alreadySignedIn() {
		return nil
	}

	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	form := forms.RegisterForm{
		FullName:        fullName,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	}.Normalize()
	if err := form.Validate(); err != nil {
		a.printFieldErrors(err, registerFields)
		return err
	}

	nav, err := a.session.Register(ctx, form.FullName, form.Email, form.Password)
	if err != nil {
		a.log.Warn(ctx, "register failed", "error", client.Message(err))
		fmt.Fprintln(a.out, "Registration failed:", client.Message(err))
		return err
	}
	return a.navigate(ctx, nav)
}

// Login prompts for credentials and signs in. On success the dashboard is
// shown; on failure the session is left as it was.
func (a *App) Login(ctx context.Context) error {
	if a.alreadySignedIn() {
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	form := forms.LoginForm{Email: email, Password: string(password)}.Normalize()
	if err := form.Validate(); err != nil {
		a.printFieldErrors(err, loginFields)
		return err
	}

	nav, err := a.session.Login(ctx, form.Email, form.Password)
	if err != nil {
		a.log.Warn(ctx, "login failed", "error", client.Message(err))
		fmt.Fprintln(a.out, "Login failed:", client.Message(err))
		return err
	}
	return a.navigate(ctx, nav)
}

// Logout forgets the stored credential and any pending upload.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	a.uploads.Clear()
	return a.navigate(ctx, a.session.Logout(ctx))
}

// Whoami prints the signed-in account.
func (a *App) Whoami(ctx context.Context) error {
	if !a.requireAuth() {
		return errLoginRequired
	}
	u := a.session.Snapshot().User

	fmt.Fprintf(a.out, "Name:   %s\n", u.DisplayName())
	fmt.Fprintf(a.out, "Email:  %s\n", u.Email)
	fmt.Fprintf(a.out, "Tier:   %s\n", u.Tier)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Joined: %s\n", u.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (a *App) alreadySignedIn() bool {
	s := a.session.Snapshot()
	if !s.Authenticated() {
		return false
	}
	fmt.Fprintf(a.out, "Already signed in as %s. Type 'logout' first.\n", s.User.DisplayName())
	return true
}

func (a *App) navigate(ctx context.Context, nav session.Navigation) error {
	switch nav {
	case session.NavigateDashboard:
		return a.Dashboard(ctx)
	case session.NavigateHome:
		fmt.Fprintln(a.out, "Logged out.")
	}
	return nil
}

// printFieldErrors lists form errors in the order the fields are asked.
func (a *App) printFieldErrors(err error, order []string) {
	var fe forms.FieldErrors
	if !errors.As(err, &fe) {
		fmt.Fprintln(a.out, err.Error())
		return
	}
	for _, field := range order {
		if msg, ok := fe[field]; ok {
			fmt.Fprintln(a.out, "  -", msg)
		}
	}
}
