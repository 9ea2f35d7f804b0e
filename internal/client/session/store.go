// Package session holds the auth session store: the single source of truth
// for who is signed in. It is an explicit object handed to every component
// that needs it, constructed at start-up and reset on logout.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dmitrijs2005/gallerist/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Fetcher is the "who am I" call.
type Fetcher func(ctx context.Context) (*models.User, error)

// Store is safe for concurrent use. Subscribers are notified after every
// change; notifications coalesce, so a subscriber always re-reads Snapshot.
type Store struct {
	mu      sync.RWMutex
	state   models.AuthSession
	subs    map[int]chan struct{}
	nextSub int

	fetches singleflight.Group
	logger  logging.Logger
}

func NewStore(logger logging.Logger) *Store {
	return &Store{subs: make(map[int]chan struct{}), logger: logger}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() models.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.User = s.state.User.Clone()
	return snap
}

// Subscribe returns a channel that receives a signal after each change and a
// function that releases the subscription.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// update applies fn under the lock and notifies subscribers if the state
// changed.
func (s *Store) update(fn func(st *models.AuthSession)) {
	s.mu.Lock()
	before := s.state
	fn(&s.state)
	s.state.Normalize()
	changed := before != s.state
	if changed {
		for _, ch := range s.subs {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
	s.mu.Unlock()
}

func (s *Store) BeginLoading() {
	s.update(func(st *models.AuthSession) { st.IsLoading = true })
}

// FailLoading ends a load without changing who is signed in.
func (s *Store) FailLoading() {
	s.update(func(st *models.AuthSession) { st.IsLoading = false })
}

// SetUser signs u in. A nil user resets the session.
func (s *Store) SetUser(u *models.User) {
	if u == nil {
		s.Reset()
		return
	}
	s.update(func(st *models.AuthSession) {
		st.User = u.Clone()
		st.IsAuthenticated = true
		st.IsLoading = false
	})
}

// Reset returns the store to the empty, signed-out state.
func (s *Store) Reset() {
	s.update(func(st *models.AuthSession) { *st = models.AuthSession{} })
}

// Hydrate replaces the state with a persisted snapshot. Loading is never
// restored.
func (s *Store) Hydrate(snap models.AuthSession) {
	s.update(func(st *models.AuthSession) {
		*st = snap
		st.User = snap.User.Clone()
		st.IsLoading = false
	})
}

// FetchCurrentUser runs the "who am I" call and folds the result into the
// store. Concurrent callers share one in-flight request.
//
// An unauthorized answer resets the session; any other failure leaves the
// current user untouched and only clears the loading flag.
func (s *Store) FetchCurrentUser(ctx context.Context, fetch Fetcher) (*models.User, error) {
	v, err, _ := s.fetches.Do("me", func() (any, error) {
		s.BeginLoading()

		u, err := fetch(ctx)
		switch {
		case err == nil && u != nil:
			s.SetUser(u)
			return u, nil
		case err == nil:
			err = common.ErrorUnauthorized
			fallthrough
		case errors.Is(err, common.ErrorUnauthorized):
			s.logger.Info(ctx, "session rejected by backend, signing out")
			s.Reset()
		default:
			s.logger.Warn(ctx, "fetch current user failed", "error", err)
			s.FailLoading()
		}
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User).Clone(), nil
}
