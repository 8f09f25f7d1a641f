// Package session owns the client's authentication state.
//
// A Manager is created once per process, initialized with Init and torn
// down with Dispose. It is the single writer of the credential store: login
// and register persist a credential; logout, a failed restore and a
// rejected credential reported through Invalidate clear it.
// Views read the state through Snapshot and Subscribe.
//
// Identity operations (Restore, Login, Register) are single-flight. A call
// made while another is running fails fast with ErrBusy. Logout, Invalidate
// and Dispose bump a generation counter so that results of operations started
// earlier are dropped instead of applied.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/resumecli/internal/client/client"
	"github.com/dmitrijs2005/resumecli/internal/client/models"
	"github.com/dmitrijs2005/resumecli/internal/client/tokenstore"
	"github.com/dmitrijs2005/resumecli/internal/logging"
)

var (
	ErrBusy       = errors.New("another sign-in is already in progress")
	ErrSuperseded = errors.New("operation superseded by a newer session change")
	ErrDisposed   = errors.New("session manager disposed")
)

// Phase is the coarse session state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Snapshot is an immutable copy of the session. User is set iff Phase is
// PhaseAuthenticated.
type Snapshot struct {
	Phase Phase
	User  *models.UserProfile
}

func (s Snapshot) Authenticated() bool {
	return s.Phase == PhaseAuthenticated && s.User != nil
}

func (s Snapshot) clone() Snapshot {
	if s.User == nil {
		return s
	}
	u := *s.User
	return Snapshot{Phase: s.Phase, User: &u}
}

// Navigation tells the view where to go after an identity operation.
type Navigation int

const (
	NavigateNone Navigation = iota
	NavigateDashboard
	NavigateHome
)

func (n Navigation) String() string {
	switch n {
	case NavigateDashboard:
		return "dashboard"
	case NavigateHome:
		return "home"
	default:
		return "none"
	}
}

// AuthAPI is the part of client.Client the manager needs.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.Credential, error)
	Login(ctx context.Context, req models.LoginRequest) (models.Credential, error)
	Me(ctx context.Context) (models.UserProfile, error)
}

var _ AuthAPI = (client.Client)(nil)

type observer struct {
	id int
	fn func(Snapshot)
}

// Manager is the session state machine.
type Manager struct {
	api   AuthAPI
	store tokenstore.Store
	log   logging.Logger

	initOnce sync.Once

	mu         sync.Mutex
	state      Snapshot
	gen        uint64
	busy       bool
	busyGen    uint64
	disposed   bool
	observers  []observer
	nextID     int
	pending    []Snapshot
	delivering bool
}

func NewManager(api AuthAPI, store tokenstore.Store, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		api:   api,
		store: store,
		log:   log.With("component", "session"),
		state: Snapshot{Phase: PhaseLoading},
	}
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Subscribe registers fn to be called after every transition, in
// transition order. The returned func removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return func() {}
	}

	m.nextID++
	id := m.nextID
	m.observers = append(m.observers, observer{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// Init resolves the initial session from the stored credential. Only the
// first call does any work; later calls return the current snapshot.
func (m *Manager) Init(ctx context.Context) Snapshot {
	m.initOnce.Do(func() {
		if _, err := m.Restore(ctx); err != nil {
			m.log.Warn(ctx, "initial restore skipped", "error", err)
		}
	})
	return m.Snapshot()
}

// Restore rebuilds the session from the stored credential. Any failure to
// confirm the credential ends unauthenticated with the credential cleared.
// The returned error is only ever ErrBusy, ErrSuperseded or ErrDisposed.
func (m *Manager) Restore(ctx context.Context) (Snapshot, error) {
	gen, err := m.begin()
	if err != nil {
		return m.Snapshot(), err
	}
	defer m.end(gen)

	cred, ok, err := m.store.Load(ctx)
	if err != nil {
		m.log.Error(ctx, "credential load failed", "error", err)
		ok = false
	}
	if !ok || cred.AccessToken == "" {
		return m.settle(gen, Snapshot{Phase: PhaseUnauthenticated})
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		m.log.Info(ctx, "stored credential rejected, clearing", "error", client.Message(err))
		if clearErr := m.clearIfCurrent(ctx, gen); clearErr != nil && !errors.Is(clearErr, ErrSuperseded) {
			m.log.Error(ctx, "credential clear failed", "error", clearErr)
		}
		return m.settle(gen, Snapshot{Phase: PhaseUnauthenticated})
	}

	return m.settle(gen, Snapshot{Phase: PhaseAuthenticated, User: &user})
}

// Login exchanges email and password for a credential, persists it and
// loads the profile. On failure the state is unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (Navigation, error) {
	return m.signIn(ctx, "login", func(ctx context.Context) (models.Credential, error) {
		return m.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	})
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, fullName, email, password string) (Navigation, error) {
	return m.signIn(ctx, "register", func(ctx context.Context) (models.Credential, error) {
		return m.api.Register(ctx, models.RegisterRequest{FullName: fullName, Email: email, Password: password})
	})
}

func (m *Manager) signIn(ctx context.Context, op string, obtain func(context.Context) (models.Credential, error)) (Navigation, error) {
	gen, err := m.begin()
	if err != nil {
		return NavigateNone, err
	}
	defer m.end(gen)

	log := m.log.With("op", op)

	cred, err := obtain(ctx)
	if err != nil {
		log.Info(ctx, "sign-in rejected", "error", client.Message(err))
		return NavigateNone, err
	}

	if err := m.persist(ctx, gen, cred); err != nil {
		return NavigateNone, err
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		log.Info(ctx, "profile fetch failed after sign-in", "error", client.Message(err))
		if clearErr := m.clearIfCurrent(ctx, gen); clearErr != nil && !errors.Is(clearErr, ErrSuperseded) {
			log.Error(ctx, "credential clear failed", "error", clearErr)
		}
		return NavigateNone, err
	}

	if _, err := m.settle(gen, Snapshot{Phase: PhaseAuthenticated, User: &user}); err != nil {
		return NavigateNone, err
	}
	log.Info(ctx, "signed in", "user_id", user.ID)
	return NavigateDashboard, nil
}

// Logout clears the credential and ends the session. It always succeeds
// locally; a store failure is only logged.
func (m *Manager) Logout(ctx context.Context) Navigation {
	m.mu.Lock()
	m.gen++
	m.busy = false
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error(ctx, "credential clear failed", "error", err)
	}
	m.transitionLocked(Snapshot{Phase: PhaseUnauthenticated})
	m.mu.Unlock()

	m.deliver()
	m.log.Info(ctx, "signed out")
	return NavigateHome
}

// Invalidate ends an authenticated session when err is an authentication
// rejection from the backend. It clears the credential, bumps the
// generation and reports whether the session was ended.
func (m *Manager) Invalidate(ctx context.Context, err error) bool {
	if !errors.Is(err, client.ErrUnauthorized) {
		return false
	}

	m.mu.Lock()
	if m.disposed || m.state.Phase != PhaseAuthenticated {
		m.mu.Unlock()
		return false
	}
	m.gen++
	m.busy = false
	if clearErr := m.store.Clear(ctx); clearErr != nil {
		m.log.Error(ctx, "credential clear failed", "error", clearErr)
	}
	m.transitionLocked(Snapshot{Phase: PhaseUnauthenticated})
	m.mu.Unlock()

	m.deliver()
	m.log.Info(ctx, "credential rejected, session ended", "error", client.Message(err))
	return true
}

// Dispose drops observers and invalidates in-flight operations. The manager
// rejects new operations afterwards.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	m.gen++
	m.busy = false
	m.observers = nil
	m.pending = nil
}

func (m *Manager) begin() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.disposed:
		return 0, ErrDisposed
	case m.busy:
		return 0, ErrBusy
	}
	m.busy = true
	m.busyGen = m.gen
	return m.gen, nil
}

func (m *Manager) end(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy && m.busyGen == gen {
		m.busy = false
	}
}

// persist saves cred unless gen has been superseded. The store is written
// under m.mu so a concurrent Logout cannot interleave with it.
func (m *Manager) persist(ctx context.Context, gen uint64, cred models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return ErrSuperseded
	}
	if err := m.store.Save(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (m *Manager) clearIfCurrent(ctx context.Context, gen uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return ErrSuperseded
	}
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// settle applies next if gen is still current and notifies observers.
func (m *Manager) settle(gen uint64, next Snapshot) (Snapshot, error) {
	m.mu.Lock()
	if gen != m.gen {
		snap := m.state.clone()
		m.mu.Unlock()
		return snap, ErrSuperseded
	}
	m.transitionLocked(next)
	snap := m.state.clone()
	m.mu.Unlock()

	m.deliver()
	return snap, nil
}

// transitionLocked records next and queues it for observers. Caller holds m.mu.
func (m *Manager) transitionLocked(next Snapshot) {
	m.state = next.clone()
	if m.disposed {
		return
	}
	m.pending = append(m.pending, next.clone())
	m.log.Debug(context.Background(), "session transition", "phase", next.Phase.String())
}

// deliver drains queued transitions. One goroutine delivers at a time;
// transitions queued meanwhile, including from inside an observer, are
// delivered by it in order.
func (m *Manager) deliver() {
	m.mu.Lock()
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true

	for len(m.pending) > 0 {
		snap := m.pending[0]
		m.pending = m.pending[1:]
		obs := make([]observer, len(m.observers))
		copy(obs, m.observers)

		m.mu.Unlock()
		for _, o := range obs {
			o.fn(snap.clone())
		}
		m.mu.Lock()
	}

	m.delivering = false
	m.mu.Unlock()
}
