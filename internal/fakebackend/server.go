package fakebackend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = 30 * time.Minute
	defaultTier     = "free"
)

// Server holds the backend state. The zero value is not usable; call New.
type Server struct {
	mu         sync.Mutex
	users      map[string]*user
	byEmail    map[string]string
	resumes    map[string]*resume
	analyses   map[string]*analysis
	failures   map[string][]failure
	gates      map[string][]*Gate
	calls      map[string]int
	headers    map[string]http.Header
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
	router     *chi.Mux
}

type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// WithBcryptCost sets the password hashing cost. The default is
// bcrypt.MinCost to keep tests fast.
func WithBcryptCost(cost int) Option {
	return func(s *Server) { s.bcryptCost = cost }
}

// WithClock replaces time.Now for created_at values.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(opts ...Option) *Server {
	s := &Server{
		users:      map[string]*user{},
		byEmail:    map[string]string{},
		resumes:    map[string]*resume{},
		analyses:   map[string]*analysis{},
		failures:   map[string][]failure{},
		gates:      map[string][]*Gate{},
		calls:      map[string]int{},
		headers:    map[string]http.Header{},
		secret:     []byte("fakebackend-secret"),
		tokenTTL:   defaultTokenTTL,
		bcryptCost: bcrypt.MinCost,
		now:        time.Now,
		router:     chi.NewRouter(),
	}
	for _, o := range opts {
		o(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)

	s.router.Post(RouteRegister, s.hooked(RouteRegister, s.handleRegister))
	s.router.Post(RouteLogin, s.hooked(RouteLogin, s.handleLogin))

	s.router.Get(RouteMe, s.hooked(RouteMe, s.authenticate(s.handleMe)))
	s.router.Post(RouteUpload, s.hooked(RouteUpload, s.authenticate(s.handleUpload)))
	s.router.Get(RouteResumes, s.hooked(RouteResumes, s.authenticate(s.handleListResumes)))
	s.router.Get(RouteResume, s.hooked(RouteResume, s.authenticate(s.handleGetResume)))
	s.router.Get(RouteDashboard, s.hooked(RouteDashboard, s.authenticate(s.handleDashboard)))
}

// SeedUser creates an account directly and returns its id.
func (s *Server) SeedUser(email, password string, fullName *string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(email, hash, fullName), nil
}

// SeedResume stores a resume for userID. With analyzed set, an analysis of
// text is stored alongside; otherwise the resume stays unanalyzed.
func (s *Server) SeedResume(userID, filename, text string, analyzed bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addResumeLocked(userID, filename, text, analyzed)
}

// IssueToken signs a token for userID valid for ttl. A negative ttl yields
// an already expired token.
func (s *Server) IssueToken(userID string, ttl time.Duration) (string, error) {
	return generateToken(userID, s.secret, ttl)
}

// DeactivateUser marks the account inactive; its tokens then get 403.
func (s *Server) DeactivateUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.active = false
	}
}

func (s *Server) addUserLocked(email string, hash []byte, fullName *string) string {
	u := &user{
		id:           uuid.NewString(),
		email:        email,
		fullName:     fullName,
		passwordHash: hash,
		tier:         defaultTier,
		active:       true,
		createdAt:    s.now(),
	}
	s.users[u.id] = u
	s.byEmail[strings.ToLower(email)] = u.id
	return u.id
}

func (s *Server) addResumeLocked(userID, filename, text string, analyzed bool) string {
	r := &resume{
		id:        uuid.NewString(),
		userID:    userID,
		filename:  filename,
		status:    "processing",
		rawText:   text,
		createdAt: s.now(),
	}
	s.resumes[r.id] = r

	if analyzed {
		s.analyses[r.id] = &analysis{
			id:        uuid.NewString(),
			resumeID:  r.id,
			result:    analyze(text),
			createdAt: s.now(),
		}
		r.status = "analyzed"
	}
	return r.id
}

type ctxKey string

const userIDKey ctxKey = "userID"

// authenticate resolves the bearer token to an active user.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		userID, err := userIDFromToken(token, s.secret)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials.")
			return
		}

		s.mu.Lock()
		u, found := s.users[userID]
		active := found && u.active
		s.mu.Unlock()

		if !found {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials.")
			return
		}
		if !active {
			writeDetail(w, http.StatusForbidden, "This account has been deactivated.")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

func currentUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

type fieldError struct {
	Msg  string `json:"msg"`
	Loc  []any  `json:"loc"`
	Type string `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}
