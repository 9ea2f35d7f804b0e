package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gallerist/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSealer(t *testing.T) *cryptox.Sealer {
	t.Helper()
	s, err := cryptox.NewSealer([]byte("test-secret"), []byte("gallerist-test"))
	require.NoError(t, err)
	return s
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpen_RunsMigrations(t *testing.T) {
	db := openTestDB(t)

	assert.True(t, tableExists(t, db, "goose_db_version"))
	assert.True(t, tableExists(t, db, "cookies"))
	assert.True(t, tableExists(t, db, "slices"))
}

func TestOpen_CreatesStateDirectory(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "dir", "state.db")
	db, err := Open(context.Background(), p)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.True(t, tableExists(t, db, "cookies"))
	assert.FileExists(t, p)
}

func TestIsPlainPath(t *testing.T) {
	assert.True(t, isPlainPath("gallerist.db"))
	assert.True(t, isPlainPath("/var/lib/gallerist/state.db"))
	assert.False(t, isPlainPath(":memory:"))
	assert.False(t, isPlainPath("file:state.db?cache=shared"))
	assert.False(t, isPlainPath(""))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RunMigrations(context.Background(), db))
}

func TestCookieJar_SetGetDelete(t *testing.T) {
	db := openTestDB(t)
	jar := NewCookieJar(db, testSealer(t))
	ctx := context.Background()

	_, ok, err := jar.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, jar.Set(ctx, "authToken", "tok-1", time.Time{}))
	require.NoError(t, jar.Set(ctx, "authToken", "tok-2", time.Time{}))

	v, ok, err := jar.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", v)

	require.NoError(t, jar.Delete(ctx, "authToken"))
	_, ok, err = jar.Get(ctx, "authToken")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieJar_ValueIsSealedAtRest(t *testing.T) {
	db := openTestDB(t)
	jar := NewCookieJar(db, testSealer(t))
	ctx := context.Background()

	require.NoError(t, jar.SetCredential(ctx, "plain-credential", time.Time{}))

	var raw []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM cookies WHERE name = 'authToken'`).Scan(&raw))
	assert.NotContains(t, string(raw), "plain-credential")

	tok, err := jar.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "plain-credential", tok)
}

func TestCookieJar_ExpiredReadsAsAbsent(t *testing.T) {
	db := openTestDB(t)
	jar := NewCookieJar(db, testSealer(t))
	ctx := context.Background()

	now := time.Now()
	jar.now = func() time.Time { return now }
	require.NoError(t, jar.SetCredential(ctx, "tok", now.Add(time.Minute)))

	ok, err := jar.HasCredential(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	jar.now = func() time.Time { return now.Add(2 * time.Minute) }
	ok, err = jar.HasCredential(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n))
	assert.Zero(t, n, "expired cookie is dropped")
}

func TestSliceRepository_SaveLoadDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewSliceRepository(db)
	ctx := context.Background()

	type authSlice struct {
		UserID          string `json:"userId"`
		IsAuthenticated bool   `json:"isAuthenticated"`
	}

	var got authSlice
	ok, err := repo.Load(ctx, "auth", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Save(ctx, "auth", authSlice{UserID: "u1", IsAuthenticated: true}))
	ok, err = repo.Load(ctx, "auth", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, authSlice{UserID: "u1", IsAuthenticated: true}, got)

	require.NoError(t, repo.Delete(ctx, "auth"))
	ok, err = repo.Load(ctx, "auth", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSliceRepository_CorruptPayload(t *testing.T) {
	db := openTestDB(t)
	repo := NewSliceRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO slices (name, payload, updated_at) VALUES ('auth', '{broken', 0)`)
	require.NoError(t, err)

	var v map[string]any
	_, err = repo.Load(ctx, "auth", &v)
	assert.Error(t, err)
}
