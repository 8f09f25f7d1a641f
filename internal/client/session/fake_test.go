package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/resumecli/internal/client/models"
)

// fakeAPI is a scripted AuthAPI. A non-nil gate makes the call wait until
// the gate is closed; the matching started channel is closed on entry.
type fakeAPI struct {
	mu sync.Mutex

	loginCred    models.Credential
	loginErr     error
	registerCred models.Credential
	registerErr  error
	meUser       models.UserProfile
	meErr        error

	loginGate    chan struct{}
	loginStarted chan struct{}
	meGate       chan struct{}
	meStarted    chan struct{}

	LastLogin    models.LoginRequest
	LastRegister models.RegisterRequest
	LoginCalls   int
	MeCalls      int
}

func (f *fakeAPI) wait(ctx context.Context, started, gate chan struct{}) error {
	if started != nil {
		close(started)
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) Login(ctx context.Context, req models.LoginRequest) (models.Credential, error) {
	f.mu.Lock()
	f.LastLogin = req
	f.LoginCalls++
	started, gate := f.loginStarted, f.loginGate
	f.loginStarted = nil
	cred, err := f.loginCred, f.loginErr
	f.mu.Unlock()

	if werr := f.wait(ctx, started, gate); werr != nil {
		return models.Credential{}, werr
	}
	return cred, err
}

func (f *fakeAPI) Register(ctx context.Context, req models.RegisterRequest) (models.Credential, error) {
	f.mu.Lock()
	f.LastRegister = req
	cred, err := f.registerCred, f.registerErr
	f.mu.Unlock()
	return cred, err
}

func (f *fakeAPI) Me(ctx context.Context) (models.UserProfile, error) {
	f.mu.Lock()
	f.MeCalls++
	started, gate := f.meStarted, f.meGate
	f.meStarted = nil
	user, err := f.meUser, f.meErr
	f.mu.Unlock()

	if werr := f.wait(ctx, started, gate); werr != nil {
		return models.UserProfile{}, werr
	}
	return user, err
}

func (f *fakeAPI) meCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MeCalls
}
