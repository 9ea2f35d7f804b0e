package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/common"
	"github.com/dmitrijs2005/gallerist/internal/cryptox"
	"github.com/dmitrijs2005/gallerist/internal/dbx"
)

// CookieJar is the cookie-like key-value area. Values are sealed at rest;
// an entry whose expiry has passed reads as absent and is dropped.
type CookieJar struct {
	db     dbx.DBTX
	sealer *cryptox.Sealer
	now    func() time.Time
}

func NewCookieJar(db dbx.DBTX, sealer *cryptox.Sealer) *CookieJar {
	return &CookieJar{db: db, sealer: sealer, now: time.Now}
}

// Get returns the value of name and whether it was present.
func (j *CookieJar) Get(ctx context.Context, name string) (string, bool, error) {
	var (
		sealed  []byte
		expires sql.NullInt64
	)
	err := j.db.QueryRowContext(ctx, `SELECT value, expires_at FROM cookies WHERE name = ?`, name).
		Scan(&sealed, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cookie[%s]: %w", name, err)
	}

	if expires.Valid && !j.now().Before(time.Unix(expires.Int64, 0)) {
		if err := j.Delete(ctx, name); err != nil {
			return "", false, err
		}
		return "", false, nil
	}

	plain, err := j.sealer.Open(name, sealed)
	if err != nil {
		return "", false, fmt.Errorf("failed to open cookie[%s]: %w", name, err)
	}
	return string(plain), true, nil
}

// Set stores value under name. A zero expires means no expiry.
func (j *CookieJar) Set(ctx context.Context, name, value string, expires time.Time) error {
	sealed, err := j.sealer.Seal(name, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to seal cookie[%s]: %w", name, err)
	}

	var exp sql.NullInt64
	if !expires.IsZero() {
		exp = sql.NullInt64{Int64: expires.Unix(), Valid: true}
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO cookies (name, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, name, sealed, exp)
	if err != nil {
		return fmt.Errorf("failed to set cookie[%s]: %w", name, err)
	}
	return nil
}

func (j *CookieJar) Delete(ctx context.Context, name string) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM cookies WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete cookie[%s]: %w", name, err)
	}
	return nil
}

// Credential returns the session credential, if any.
func (j *CookieJar) Credential(ctx context.Context) (string, bool, error) {
	return j.Get(ctx, common.SessionCookieName)
}

// HasCredential reports whether a session credential is stored.
func (j *CookieJar) HasCredential(ctx context.Context) (bool, error) {
	_, ok, err := j.Credential(ctx)
	return ok, err
}

func (j *CookieJar) SetCredential(ctx context.Context, token string, expires time.Time) error {
	return j.Set(ctx, common.SessionCookieName, token, expires)
}

func (j *CookieJar) DeleteCredential(ctx context.Context) error {
	return j.Delete(ctx, common.SessionCookieName)
}

// Token satisfies the API client's token source.
func (j *CookieJar) Token(ctx context.Context) (string, error) {
	tok, _, err := j.Credential(ctx)
	return tok, err
}
