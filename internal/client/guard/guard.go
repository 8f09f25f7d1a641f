// Package guard decides whether a protected view may render.
package guard

import (
	"sync"

	"github.com/dmitrijs2005/resumecli/internal/client/session"
)

// Decision is the outcome of evaluating a session for a protected view.
type Decision int

const (
	// DecisionWait means the session is still resolving; do nothing yet.
	DecisionWait Decision = iota
	// DecisionRedirect means the view must send the user to the login view.
	DecisionRedirect
	// DecisionRender means the view may render its protected content.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	default:
		return "wait"
	}
}

// ViewLogin is the redirect target for unauthenticated access.
const ViewLogin = "login"

// Evaluate maps a snapshot to a decision. It has no side effects.
func Evaluate(s session.Snapshot) Decision {
	switch {
	case s.Phase == session.PhaseLoading:
		return DecisionWait
	case s.Authenticated():
		return DecisionRender
	default:
		return DecisionRedirect
	}
}

// Subscriber is satisfied by *session.Manager.
type Subscriber interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) (cancel func())
}

// Guard wraps Evaluate with redirect bookkeeping: the redirect callback runs
// once per resolved unauthenticated state, not on every re-evaluation.
type Guard struct {
	redirect func(target string)

	mu         sync.Mutex
	redirected bool
	last       Decision
}

// New returns a guard calling redirect with ViewLogin when access is denied.
func New(redirect func(target string)) *Guard {
	return &Guard{redirect: redirect}
}

// Check evaluates s and fires the redirect callback if this is the first
// evaluation of an unauthenticated state since the last non-redirect one.
func (g *Guard) Check(s session.Snapshot) Decision {
	d := Evaluate(s)

	g.mu.Lock()
	fire := false
	switch d {
	case DecisionRedirect:
		fire = !g.redirected
		g.redirected = true
	case DecisionRender, DecisionWait:
		g.redirected = false
	}
	g.last = d
	g.mu.Unlock()

	if fire && g.redirect != nil {
		g.redirect(ViewLogin)
	}
	return d
}

// Last returns the most recent decision.
func (g *Guard) Last() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Attach evaluates the current snapshot and re-evaluates on every
// transition until the returned func is called.
func (g *Guard) Attach(src Subscriber) (detach func()) {
	cancel := src.Subscribe(func(s session.Snapshot) { g.Check(s) })
	g.Check(src.Snapshot())
	return cancel
}
