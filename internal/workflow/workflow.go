// Package workflow drives the detail views: loading one record, deciding which
// actions are allowed, and submitting sign, reject and forward requests.
//
// A workflow belongs to one open view. Leave discards whatever is still in
// flight; results arriving afterwards are dropped with ErrStale.
package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"ttd-cli/internal/model"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Signing
	Rejecting
	Forwarding
	NotFound
	// Failed means the initial load failed; there is no detail to show.
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Signing:
		return "signing"
	case Rejecting:
		return "rejecting"
	case Forwarding:
		return "forwarding"
	case NotFound:
		return "not found"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Busy reports whether an action is being submitted.
func (s State) Busy() bool {
	return s == Signing || s == Rejecting || s == Forwarding
}

var (
	// ErrStale means the view was left or reopened while the call was in
	// flight.
	ErrStale = errors.New("workflow: result discarded")

	// ErrNotActionable means the loaded record does not permit the action,
	// typically because someone else already acted on it.
	ErrNotActionable = errors.New("this document can no longer be signed or rejected")

	ErrNotLoaded = errors.New("workflow: nothing loaded")
	ErrBusy      = errors.New("workflow: another action is in progress")
)

// SessionFunc returns the current session; it is read on every call.
type SessionFunc func() model.Session

// Outcome is the result of a successful action.
type Outcome struct {
	Message string

	// ReturnAfter is how long the view should linger before going back to
	// its list.
	ReturnAfter time.Duration

	// RefreshErr is set when the action succeeded but re-reading the record
	// did not.
	RefreshErr error
}

// lifecycle tracks the generation and cancel func shared by both workflows.
type lifecycle struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc
}

// beginLocked starts a new generation, cancelling the previous one.
func (l *lifecycle) beginLocked(parent context.Context) (context.Context, uint64) {
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.gen++
	l.cancel = cancel
	return ctx, l.gen
}

func (l *lifecycle) leave() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	l.state = Idle
}

func (l *lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
