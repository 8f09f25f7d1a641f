package fakebackend

import (
	"net/http"
	"sync"
)

// Route patterns accepted by Fail, Hold and Requests.
const (
	RouteRegister  = "/api/auth/register"
	RouteLogin     = "/api/auth/login"
	RouteMe        = "/api/auth/me"
	RouteUpload    = "/api/resume/upload"
	RouteResumes   = "/api/resume/"
	RouteResume    = "/api/resume/{id}"
	RouteDashboard = "/api/dashboard/"
)

type failure struct {
	status int
	body   string
}

// Gate holds one request until Release is called.
type Gate struct {
	arrived     chan struct{}
	release     chan struct{}
	arriveOnce  sync.Once
	releaseOnce sync.Once
}

func newGate() *Gate {
	return &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
}

// Arrived is closed once the held request reaches the handler.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// Release lets the held request proceed. It is safe to call more than once.
func (g *Gate) Release() {
	g.releaseOnce.Do(func() { close(g.release) })
}

// Fail makes the next request to route answer with status and a raw body.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, body: body})
}

// Hold parks the next request to route until the returned gate is released
// or the request is cancelled.
func (s *Server) Hold(route string) *Gate {
	g := newGate()
	s.mu.Lock()
	s.gates[route] = append(s.gates[route], g)
	s.mu.Unlock()
	return g
}

// Requests reports how many requests reached route.
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastHeader returns the given header of the most recent request to route.
func (s *Server) LastHeader(route, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.headers[route]
	if !ok {
		return ""
	}
	return h.Get(name)
}

// hooked wraps a handler with the per-route test hooks.
func (s *Server) hooked(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[route]++
		s.headers[route] = r.Header.Clone()

		var gate *Gate
		if q := s.gates[route]; len(q) > 0 {
			gate, s.gates[route] = q[0], q[1:]
		}
		var fail *failure
		if q := s.failures[route]; len(q) > 0 {
			fail = &q[0]
			s.failures[route] = q[1:]
		}
		s.mu.Unlock()

		if gate != nil {
			gate.arriveOnce.Do(func() { close(gate.arrived) })
			select {
			case <-gate.release:
			case <-r.Context().Done():
				return
			}
		}

		if fail != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}

		next(w, r)
	}
}
