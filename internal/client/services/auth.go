// Package services contains application services for the gallerist client.
// This file defines the authentication service: sign-in and sign-out, the
// "who am I" fetch, password reset, profile edits, and persistence of the
// auth slice between runs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/client/client"
	"github.com/dmitrijs2005/gallerist/internal/client/credential"
	"github.com/dmitrijs2005/gallerist/internal/client/models"
	"github.com/dmitrijs2005/gallerist/internal/client/session"
	"github.com/dmitrijs2005/gallerist/internal/client/storage"
	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dmitrijs2005/gallerist/internal/cryptox"
	"github.com/dmitrijs2005/gallerist/internal/dbx"
	"github.com/dmitrijs2005/gallerist/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate, store the credential and the signed-in user.
//   - Logout: tell the backend (best effort), then forget everything local.
//   - WhoAmI: refresh the current user from the backend.
//   - PersistSession: keep the persisted auth slice in step with the store
//     until ctx is done.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*models.User, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, password []byte) error
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error)
	Fetcher() session.Fetcher
	PersistSession(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
	sealer *cryptox.Sealer
	store  *session.Store
	logger logging.Logger
	now    func() time.Time
}

func NewAuthService(c client.Client, db *sql.DB, sealer *cryptox.Sealer, store *session.Store, logger logging.Logger) AuthService {
	return &authService{client: c, db: db, sealer: sealer, store: store, logger: logger, now: time.Now}
}

func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	defer common.WipeByteArray(password)

	res, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := credential.Check(res.Token, a.now()); err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	info, _ := credential.Inspect(res.Token)

	snap := models.AuthSession{User: res.User, IsAuthenticated: true}
	snap.Normalize()

	err = dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := storage.NewCookieJar(tx, a.sealer).SetCredential(ctx, res.Token, info.ExpiresAt); err != nil {
			return err
		}
		return storage.NewSliceRepository(tx).Save(ctx, common.AuthSliceName, snap)
	})
	if err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	a.store.SetUser(res.User)
	a.logger.Info(ctx, "signed in", "user_id", res.User.ID, "role", res.User.Role)
	return res.User.Clone(), nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.client.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "backend logout failed, clearing local session anyway", "error", err)
	}

	err := dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := storage.NewCookieJar(tx, a.sealer).DeleteCredential(ctx); err != nil {
			return err
		}
		return storage.NewSliceRepository(tx).Delete(ctx, common.AuthSliceName)
	})
	a.store.Reset()
	if err != nil {
		return fmt.Errorf("session clearing error: %w", err)
	}
	return nil
}

func (a *authService) Fetcher() session.Fetcher {
	return a.client.Me
}

func (a *authService) WhoAmI(ctx context.Context) (*models.User, error) {
	return a.store.FetchCurrentUser(ctx, a.client.Me)
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	return a.client.ForgotPassword(ctx, email)
}

func (a *authService) ResetPassword(ctx context.Context, token string, password []byte) error {
	defer common.WipeByteArray(password)

	if token == "" || len(password) == 0 {
		return fmt.Errorf("%w: reset token and new password are required", common.ErrorValidation)
	}
	return a.client.ResetPassword(ctx, token, string(password))
}

func (a *authService) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*models.User, error) {
	u, err := a.client.UpdateProfile(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			a.store.Reset()
		}
		return nil, err
	}
	if u != nil {
		a.store.SetUser(u)
	}
	return u, nil
}

// PersistSession writes the auth slice every time the store changes. The
// loading flag is never persisted.
func (a *authService) PersistSession(ctx context.Context) error {
	changes, cancel := a.store.Subscribe()
	defer cancel()

	repo := storage.NewSliceRepository(a.db)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			snap := a.store.Snapshot()
			if snap.IsLoading {
				continue
			}
			if err := repo.Save(ctx, common.AuthSliceName, snap); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				a.logger.Warn(ctx, "failed to persist auth slice", "error", err)
			}
		}
	}
}
