// Package bootstrap restores the persisted client state at startup and kicks
// off the "who am I" call when a session credential survives.
package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/client/credential"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/client/session"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dmitrijs2005/gallerist/internal/logging"
)

type SliceLoader interface {
	Load(ctx context.Context, name string, v any) (bool, error)
}

type CredentialStore interface {
	Credential(ctx context.Context) (string, bool, error)
	DeleteCredential(ctx context.Context) error
}

type Sequence struct {
	store  *session.Store
	slices SliceLoader
	creds  CredentialStore
	fetch  session.Fetcher
	logger logging.Logger
	now    func() time.Time

	once sync.Once
	err  error
	// done is closed when the background fetch (if any) has settled.
	done chan struct{}
}

func New(store *session.Store, slices SliceLoader, creds CredentialStore, fetch session.Fetcher, logger logging.Logger) *Sequence {
	return &Sequence{
		store:  store,
		slices: slices,
		creds:  creds,
		fetch:  fetch,
		logger: logger,
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Run rehydrates the auth slice, then reads the session credential. A usable
// credential dispatches the "who am I" fetch in the background; Run never
// waits for it. Only the first call does any work.
func (b *Sequence) Run(ctx context.Context) error {
	b.once.Do(func() {
		b.err = b.run(ctx)
	})
	return b.err
}

// Done is closed once the bootstrap fetch has settled, or right after Run
// when there was nothing to fetch.
func (b *Sequence) Done() <-chan struct{} {
	return b.done
}

func (b *Sequence) run(ctx context.Context) error {
	var snap models.AuthSession
	ok, err := b.slices.Load(ctx, common.AuthSliceName, &snap)
	if err != nil {
		// a corrupt slice is not fatal; start signed out
		b.logger.Warn(ctx, "failed to rehydrate auth slice", "error", err)
	} else if ok {
		b.store.Hydrate(snap)
	}

	token, ok, err := b.creds.Credential(ctx)
	if err != nil {
		close(b.done)
		return fmt.Errorf("bootstrap: read credential: %w", err)
	}
	if !ok {
		b.logger.Debug(ctx, "no session credential")
		close(b.done)
		return nil
	}

	if err := credential.Check(token, b.now()); err != nil {
		b.logger.Info(ctx, "dropping unusable session credential", "error", err)
		b.store.Reset()
		close(b.done)
		if err := b.creds.DeleteCredential(ctx); err != nil {
			return fmt.Errorf("bootstrap: delete credential: %w", err)
		}
		return nil
	}

	b.store.BeginLoading()
	go func() {
		defer close(b.done)
		if _, err := b.store.FetchCurrentUser(ctx, b.fetch); err != nil {
			b.logger.Debug(ctx, "bootstrap fetch failed", "error", err)
		}
	}()
	return nil
}
