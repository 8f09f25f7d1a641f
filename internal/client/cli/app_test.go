package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/resumecli/internal/client/client"
	"github.com/dmitrijs2005/resumecli/internal/client/config"
	"github.com/dmitrijs2005/resumecli/internal/client/forms"
	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/client/tokenstore"
	"github.com/dmitrijs2005/resumecli/internal/fakebackend"
	"github.com/dmitrijs2005/resumecli/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeText = `Jane Doe
jane@example.com | +1 555 123 4567 | linkedin.com/in/janedoe

Experience
- Led a team of 5 engineers and increased throughput by 40%
- Built and deployed Go services on AWS with Docker and Kubernetes

Education
BSc Computer Science

Skills
Go, SQL, Python, Docker
`

type harness struct {
	be    *fakebackend.Server
	store *tokenstore.MemoryStore
	app   *App
	out   *bytes.Buffer
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	be := fakebackend.New()
	srv := httptest.NewServer(be.Handler())
	t.Cleanup(srv.Close)

	store := tokenstore.NewMemoryStore()
	api := client.NewHTTPClient(srv.URL, 5*time.Second, store)
	out := &bytes.Buffer{}

	app := newApp(api, store, logging.Discard(), strings.NewReader(input), out)
	t.Cleanup(func() { _ = app.Close() })

	return &harness{be: be, store: store, app: app, out: out}
}

// signIn seeds Jane, stores a valid token for her and starts the app.
func (h *harness) signIn(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	name := "Jane Doe"
	id, err := h.be.SeedUser("jane@example.com", "Secret123", &name)
	require.NoError(t, err)
	tok, err := h.be.IssueToken(id, time.Hour)
	require.NoError(t, err)
	require.NoError(t, h.store.Save(ctx, models.Credential{AccessToken: tok, TokenType: "bearer"}))

	h.app.start(ctx)
	require.True(t, h.app.isLoggedIn())
	return id
}

func stubPasswords(t *testing.T, passwords ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(string, io.Writer) ([]byte, error) {
		if i >= len(passwords) {
			return nil, io.EOF
		}
		pw := []byte(passwords[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func writeResume(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func storedToken(t *testing.T, s tokenstore.Store) (string, bool) {
	t.Helper()
	cred, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	return cred.AccessToken, ok
}

func TestApp_StartWithoutCredentialRedirectsToLogin(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()

	h.app.start(ctx)
	assert.Contains(t, h.out.String(), "Please log in first.")
	assert.Equal(t, "(guest)", h.app.getStatus())

	require.ErrorIs(t, h.app.List(ctx), errLoginRequired)
	require.ErrorIs(t, h.app.Upload(ctx, "cv.pdf"), errLoginRequired)

	assert.Equal(t, 1, strings.Count(h.out.String(), "Please log in first."))
	assert.Contains(t, h.out.String(), "Type 'login' or 'register'.")
	assert.Zero(t, h.be.Requests(fakebackend.RouteResumes))
	assert.Zero(t, h.be.Requests(fakebackend.RouteUpload))
}

func TestApp_StartRestoresSession(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	assert.Contains(t, h.out.String(), "Signed in as Jane Doe")
	assert.NotContains(t, h.out.String(), "Please log in first.")
	assert.Equal(t, "(jane@example.com)", h.app.getStatus())
}

func TestApp_StartWithStaleCredential(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, models.Credential{AccessToken: "not-a-jwt", TokenType: "bearer"}))

	h.app.start(ctx)

	assert.False(t, h.app.isLoggedIn())
	assert.Contains(t, h.out.String(), "Please log in first.")
	_, ok := storedToken(t, h.store)
	assert.False(t, ok)
}

func TestApp_RegisterShowsDashboard(t *testing.T) {
	h := newHarness(t, "Jane Doe\njane@example.com\n")
	stubPasswords(t, "Secret123", "Secret123")
	ctx := context.Background()
	h.app.start(ctx)

	require.NoError(t, h.app.Register(ctx))

	out := h.out.String()
	assert.Contains(t, out, "Welcome back, Jane Doe!")
	assert.Contains(t, out, "Resumes analyzed: 0")
	assert.Contains(t, out, "Average score:    -")
	assert.True(t, h.app.isLoggedIn())
	_, ok := storedToken(t, h.store)
	assert.True(t, ok)
}

func TestApp_RegisterValidationStaysLocal(t *testing.T) {
	h := newHarness(t, "J\nnot-an-email\n")
	stubPasswords(t, "short", "other")
	ctx := context.Background()
	h.app.start(ctx)

	err := h.app.Register(ctx)

	var fe forms.FieldErrors
	require.ErrorAs(t, err, &fe)
	out := h.out.String()
	assert.Contains(t, out, "Name must be at least 2 characters.")
	assert.Contains(t, out, "Please enter a valid email address.")
	assert.Contains(t, out, "Password must be at least 8 characters.")
	assert.Contains(t, out, "Passwords do not match.")
	assert.Less(t, strings.Index(out, "Name must be"), strings.Index(out, "Passwords do not match."))
	assert.Zero(t, h.be.Requests(fakebackend.RouteRegister))
}

func TestApp_RegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t, "Jane Again\njane@example.com\n")
	stubPasswords(t, "Secret123", "Secret123")
	ctx := context.Background()
	_, err := h.be.SeedUser("jane@example.com", "Secret123", nil)
	require.NoError(t, err)
	h.app.start(ctx)

	require.Error(t, h.app.Register(ctx))
	assert.Contains(t, h.out.String(), "Registration failed: A user with this email already exists.")
	assert.False(t, h.app.isLoggedIn())
}

func TestApp_LoginRejected(t *testing.T) {
	h := newHarness(t, "jane@example.com\n")
	stubPasswords(t, "WrongPass1")
	ctx := context.Background()
	_, err := h.be.SeedUser("jane@example.com", "Secret123", nil)
	require.NoError(t, err)
	h.app.start(ctx)

	err = h.app.Login(ctx)

	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Contains(t, h.out.String(), "Login failed: Invalid email or password.")
	assert.False(t, h.app.isLoggedIn())
	_, ok := storedToken(t, h.store)
	assert.False(t, ok)
}

func TestApp_LoginThenLogout(t *testing.T) {
	h := newHarness(t, "  jane@example.com \n")
	stubPasswords(t, "Secret123")
	ctx := context.Background()
	_, err := h.be.SeedUser("jane@example.com", "Secret123", nil)
	require.NoError(t, err)
	h.app.start(ctx)

	require.NoError(t, h.app.Login(ctx))
	assert.Contains(t, h.out.String(), "Welcome back, jane@example.com!")

	require.NoError(t, h.app.Logout(ctx))
	assert.Contains(t, h.out.String(), "Logged out.")
	assert.False(t, h.app.isLoggedIn())
	_, ok := storedToken(t, h.store)
	assert.False(t, ok)

	h.out.Reset()
	require.NoError(t, h.app.Logout(ctx))
	assert.Contains(t, h.out.String(), "Not logged in.")
}

func TestApp_LoginWhileSignedIn(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	logins := h.be.Requests(fakebackend.RouteLogin)

	require.NoError(t, h.app.Login(context.Background()))
	assert.Contains(t, h.out.String(), "Already signed in as Jane Doe.")
	assert.Equal(t, logins, h.be.Requests(fakebackend.RouteLogin))
}

func TestApp_Whoami(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.app.Whoami(context.Background()))
	out := h.out.String()
	assert.Contains(t, out, "Name:   Jane Doe")
	assert.Contains(t, out, "Email:  jane@example.com")
	assert.Contains(t, out, "Joined: ")
}

func TestApp_UploadAnalysisListDashboard(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	ctx := context.Background()
	path := writeResume(t, "cv.txt", []byte(resumeText))

	require.NoError(t, h.app.Upload(ctx, path))

	out := h.out.String()
	assert.Contains(t, out, "Selected cv.txt (")
	assert.Contains(t, out, "words: Jane Doe")
	assert.Contains(t, out, "Analysis complete: cv.txt scored")

	st := h.app.uploads.Status()
	require.NotNil(t, st.Outcome)
	id := st.Outcome.ResumeID
	assert.Contains(t, out, "Resume ID: "+id)
	assert.Contains(t, out, "Type 'analysis "+id+"' to see the full report.")

	h.out.Reset()
	require.NoError(t, h.app.Analysis(ctx, id))
	report := h.out.String()
	assert.Contains(t, report, "Resume: cv.txt (analyzed)")
	assert.Contains(t, report, "Overall score: ")
	assert.Less(t, strings.Index(report, "Contact Information"), strings.Index(report, "Formatting Quality"))

	h.out.Reset()
	require.NoError(t, h.app.List(ctx))
	assert.Contains(t, h.out.String(), "cv.txt")
	assert.Contains(t, h.out.String(), "1 resumes, 1 scored: mean ")

	h.out.Reset()
	require.NoError(t, h.app.Dashboard(ctx))
	assert.Contains(t, h.out.String(), "Resumes analyzed: 1")
	assert.Contains(t, h.out.String(), "Recent resumes:")
}

func TestApp_UploadRejectsUnsupportedType(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	path := writeResume(t, "photo.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

	err := h.app.Upload(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, h.out.String(), "Only PDF, DOCX, and TXT files are supported.")
	assert.Zero(t, h.be.Requests(fakebackend.RouteUpload))
}

func TestApp_UploadMissingFile(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.Error(t, h.app.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.pdf")))
	assert.Contains(t, h.out.String(), "Cannot read file:")
	assert.Zero(t, h.be.Requests(fakebackend.RouteUpload))
}

func TestApp_UploadFailureThenRetry(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	ctx := context.Background()
	h.be.Fail(fakebackend.RouteUpload, 500, `{"detail":"Storage is full"}`)
	path := writeResume(t, "cv.txt", []byte(resumeText))

	require.Error(t, h.app.Upload(ctx, path))
	assert.Contains(t, h.out.String(), "Upload failed: Storage is full")
	assert.Contains(t, h.out.String(), "Type 'retry' to try again.")

	h.out.Reset()
	require.NoError(t, h.app.Retry(ctx))
	assert.Contains(t, h.out.String(), "Analysis complete: cv.txt")
	assert.Equal(t, 2, h.be.Requests(fakebackend.RouteUpload))
}

func TestApp_RejectedCredentialEndsSession(t *testing.T) {
	h := newHarness(t, "")
	id := h.signIn(t)
	ctx := context.Background()
	h.be.DeactivateUser(id)
	h.out.Reset()

	err := h.app.Dashboard(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Contains(t, h.out.String(), "This account has been deactivated.")
	assert.Contains(t, h.out.String(), "Please log in first.")
	assert.False(t, h.app.isLoggedIn())
	assert.Equal(t, "(guest)", h.app.getStatus())
	_, ok := storedToken(t, h.store)
	assert.False(t, ok)

	require.ErrorIs(t, h.app.List(ctx), errLoginRequired)
	assert.Zero(t, h.be.Requests(fakebackend.RouteResumes))
	assert.Equal(t, 1, strings.Count(h.out.String(), "This account has been deactivated."))
}

func TestApp_UploadRejectedCredential(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)
	ctx := context.Background()
	h.be.Fail(fakebackend.RouteUpload, 401, `{"detail":"Could not validate credentials."}`)
	path := writeResume(t, "cv.txt", []byte(resumeText))

	require.ErrorIs(t, h.app.Upload(ctx, path), client.ErrUnauthorized)
	out := h.out.String()
	assert.Contains(t, out, "Upload failed: Could not validate credentials.")
	assert.Contains(t, out, "Please log in first.")
	assert.NotContains(t, out, "Type 'retry' to try again.")
	assert.False(t, h.app.isLoggedIn())

	require.ErrorIs(t, h.app.Retry(ctx), errLoginRequired)
	assert.Equal(t, 1, h.be.Requests(fakebackend.RouteUpload))
}

func TestApp_RetryWithoutFailure(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.Error(t, h.app.Retry(context.Background()))
	assert.Contains(t, h.out.String(), "Nothing to retry.")
}

func TestApp_AnalysisNotFoundAndPending(t *testing.T) {
	h := newHarness(t, "")
	userID := h.signIn(t)
	ctx := context.Background()

	err := h.app.Analysis(ctx, "missing")
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Contains(t, h.out.String(), "Resume not found.")

	id := h.be.SeedResume(userID, "cv.pdf", resumeText, false)
	h.out.Reset()
	require.NoError(t, h.app.Analysis(ctx, id))
	assert.Contains(t, h.out.String(), "No analysis available for cv.pdf yet")
}

func TestApp_ListEmpty(t *testing.T) {
	h := newHarness(t, "")
	h.signIn(t)

	require.NoError(t, h.app.List(context.Background()))
	assert.Contains(t, h.out.String(), "No resumes yet.")
}

func TestNewApp_OpensNestedDatabase(t *testing.T) {
	ctx := context.Background()
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabasePath = filepath.Join(t.TempDir(), "state", "tokens.db")

	app, err := NewApp(ctx, c, logging.Discard())
	require.NoError(t, err)

	_, err = os.Stat(c.DatabasePath)
	require.NoError(t, err)
	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
}

func TestNewApp_Ephemeral(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.Ephemeral = true
	c.DatabasePath = ""

	app, err := NewApp(context.Background(), c, logging.Discard())
	require.NoError(t, err)
	assert.Empty(t, app.closers)
	require.NoError(t, app.Close())
}
