package identity

import (
	"context"
	"sync"
	"time"
)

// Phase is the reconciler's own state machine, driven once per page mount:
//
//	Unknown -> Checking -> {Authenticated, Unauthenticated,
//	                        Inconsistent -> Checking (one retry)}
//
// Authenticated and Unauthenticated are terminal until navigation resets
// the reconciler.
type Phase string

const (
	PhaseUnknown         Phase = "unknown"
	PhaseChecking        Phase = "checking"
	PhaseAuthenticated   Phase = "authenticated"
	PhaseUnauthenticated Phase = "unauthenticated"
)

// Decision is what a dashboard guard acts on after a Check.
type Decision struct {
	Phase Phase
	// RedirectTo is the actor's login route when the decision is
	// Unauthenticated; empty otherwise.
	RedirectTo string
	// Forced is set when the grace timer elapsed and the page must render
	// regardless of load state. A usability safeguard, not a correctness one.
	Forced bool
}

// Reconciler detects and repairs the one inconsistency the identity slice
// can reach from the outside: an authenticated flag with no profile while a
// token is present in durable storage. The repair is a single profile
// re-fetch, never a loop.
type Reconciler struct {
	store *Store
	grace time.Duration

	mu      sync.Mutex
	phase   Phase
	started time.Time
	retried bool
	now     func() time.Time
}

// NewReconciler builds a guard for one identity store. The grace duration
// bounds how long a Pending slice may keep a page in its loading state.
func NewReconciler(store *Store, grace time.Duration) *Reconciler {
	return &Reconciler{
		store: store,
		grace: grace,
		phase: PhaseUnknown,
		now:   time.Now,
	}
}

// Check runs one reconciliation pass. Call it on every relevant page mount;
// once a terminal phase is reached it is sticky until Reset.
func (r *Reconciler) Check(ctx context.Context) Decision {
	r.mu.Lock()
	if r.phase == PhaseAuthenticated || r.phase == PhaseUnauthenticated {
		phase := r.phase
		r.mu.Unlock()
		return r.decision(phase, false)
	}
	if r.started.IsZero() {
		r.started = r.now()
	}
	r.phase = PhaseChecking
	graceElapsed := r.now().Sub(r.started) >= r.grace
	retried := r.retried
	r.mu.Unlock()

	snap := r.store.Snapshot()

	switch {
	case snap.Authenticated() && snap.Profile != nil:
		return r.settle(PhaseAuthenticated)

	case snap.State == StateAuthenticated && snap.Profile == nil && snap.Token != "":
		// Inconsistent: flag raised without a profile. Repair once.
		if retried {
			return r.settle(PhaseUnauthenticated)
		}
		r.mu.Lock()
		r.retried = true
		r.mu.Unlock()
		if _, err := r.store.LoadProfile(ctx); err != nil {
			return r.settle(PhaseUnauthenticated)
		}
		return r.settle(PhaseAuthenticated)

	case snap.State == StatePending:
		// Rehydrated token awaiting server confirmation.
		if !retried {
			r.mu.Lock()
			r.retried = true
			r.mu.Unlock()
			if _, err := r.store.LoadProfile(ctx); err == nil {
				return r.settle(PhaseAuthenticated)
			}
			if r.store.Snapshot().State == StateUnauthenticated {
				return r.settle(PhaseUnauthenticated)
			}
		}
		if graceElapsed {
			// Force-render rather than spin forever.
			return Decision{Phase: PhaseChecking, Forced: true}
		}
		return Decision{Phase: PhaseChecking}

	case snap.Token == "" && snap.Profile == nil:
		// Nothing to wait for: no stored token means no fetch can be in
		// flight. Redirect to the actor's login route.
		return r.settle(PhaseUnauthenticated)

	default:
		return r.settle(PhaseUnauthenticated)
	}
}

// Reset returns the reconciler to Unknown, as navigation does.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phase = PhaseUnknown
	r.started = time.Time{}
	r.retried = false
}

func (r *Reconciler) settle(phase Phase) Decision {
	r.mu.Lock()
	r.phase = phase
	r.mu.Unlock()
	return r.decision(phase, false)
}

func (r *Reconciler) decision(phase Phase, forced bool) Decision {
	d := Decision{Phase: phase, Forced: forced}
	if phase == PhaseUnauthenticated {
		d.RedirectTo = r.store.kind.LoginRoute()
	}
	return d
}
