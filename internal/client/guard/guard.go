// Package guard decides whether a protected view may render for the current
// session, or where the user should be sent instead.
package guard

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/client/session"
	"github.com/dmitrijs2005/gallerist/internal/logging"
)

type Outcome int

const (
	// Loading: show a loading indicator and wait.
	Loading Outcome = iota
	// RedirectSignIn: show the sign-in view instead.
	RedirectSignIn
	// RedirectDefault: signed in but not allowed; show the landing view.
	RedirectDefault
	// Render: show the protected view.
	Render
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case RedirectSignIn:
		return "redirect-sign-in"
	case RedirectDefault:
		return "redirect-default"
	case Render:
		return "render"
	default:
		return "unknown"
	}
}

// Input is everything Decide looks at.
type Input struct {
	Session       models.AuthSession
	HasCredential bool
	// FetchSettled is true once the mount-time "who am I" call (if any) has
	// finished. Until then a credential without a user means "still loading".
	FetchSettled  bool
	RequiredRoles []models.Role
}

// Decide is the guard's pure decision function.
func Decide(in Input) Outcome {
	s := in.Session

	if s.IsLoading {
		return Loading
	}
	if in.HasCredential && s.User == nil && !in.FetchSettled {
		return Loading
	}
	if !in.HasCredential || !s.IsAuthenticated || s.User == nil {
		return RedirectSignIn
	}
	if len(in.RequiredRoles) > 0 && !slices.Contains(in.RequiredRoles, s.User.Role) {
		return RedirectDefault
	}
	return Render
}

// CredentialChecker reports whether a session credential is stored.
type CredentialChecker interface {
	HasCredential(ctx context.Context) (bool, error)
}

// Guard wraps one mount of a protected view.
type Guard struct {
	store    *session.Store
	creds    CredentialChecker
	fetch    session.Fetcher
	required []models.Role
	logger   logging.Logger

	mountOnce sync.Once
	settled   chan struct{}
}

func New(store *session.Store, creds CredentialChecker, fetch session.Fetcher, logger logging.Logger, required ...models.Role) *Guard {
	return &Guard{
		store:    store,
		creds:    creds,
		fetch:    fetch,
		required: required,
		logger:   logger,
		settled:  make(chan struct{}),
	}
}

func (g *Guard) hasCredential(ctx context.Context) bool {
	ok, err := g.creds.HasCredential(ctx)
	if err != nil {
		g.logger.Warn(ctx, "credential lookup failed", "error", err)
		return false
	}
	return ok
}

func (g *Guard) isSettled() bool {
	select {
	case <-g.settled:
		return true
	default:
		return false
	}
}

// Mount starts the guard. If a credential is stored but no user is loaded,
// it fires the "who am I" fetch in the background; this happens at most once
// per Guard no matter how often Mount is called.
func (g *Guard) Mount(ctx context.Context) {
	g.mountOnce.Do(func() {
		if !g.hasCredential(ctx) || g.store.Snapshot().User != nil {
			close(g.settled)
			return
		}
		go func() {
			defer close(g.settled)
			if _, err := g.store.FetchCurrentUser(ctx, g.fetch); err != nil {
				g.logger.Debug(ctx, "guard fetch failed", "error", err)
			}
		}()
	})
}

// Outcome evaluates the guard against the current state.
func (g *Guard) Outcome(ctx context.Context) Outcome {
	return Decide(Input{
		Session:       g.store.Snapshot(),
		HasCredential: g.hasCredential(ctx),
		FetchSettled:  g.isSettled(),
		RequiredRoles: g.required,
	})
}

// Await blocks until the outcome is something other than Loading.
func (g *Guard) Await(ctx context.Context) (Outcome, error) {
	changes, cancel := g.store.Subscribe()
	defer cancel()

	settled := g.settled
	for {
		if o := g.Outcome(ctx); o != Loading {
			return o, nil
		}
		select {
		case <-changes:
		case <-settled:
			settled = nil
		case <-ctx.Done():
			return Loading, ctx.Err()
		}
	}
}

// Watch emits the outcome now and again each time it changes. The channel
// closes when ctx is done.
func (g *Guard) Watch(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	changes, cancel := g.store.Subscribe()

	go func() {
		defer close(out)
		defer cancel()

		settled := g.settled
		last := Outcome(-1)
		for {
			if o := g.Outcome(ctx); o != last {
				last = o
				select {
				case out <- o:
				case <-ctx.Done():
					return
				}
			}
			select {
			case <-changes:
			case <-settled:
				settled = nil
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
