package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Gallery-Manager")
	require.NoError(t, err)
	assert.Equal(t, RoleGalleryManager, r)

	_, err = ParseRole("curator")
	assert.Error(t, err)
}

func TestUser_Name(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).Name())
	assert.Equal(t, "ada@example.org", (&User{Email: "ada@example.org"}).Name())
}

func TestUser_CloneIsDeep(t *testing.T) {
	bio := "painter"
	u := &User{ID: "u1", Bio: &bio}
	c := u.Clone()
	*c.Bio = "sculptor"

	assert.Equal(t, "painter", *u.Bio)
	assert.Nil(t, (*User)(nil).Clone())
}

func TestAuthSession_Normalize(t *testing.T) {
	s := AuthSession{IsAuthenticated: true, Role: RoleAdmin}
	s.Normalize()
	assert.False(t, s.IsAuthenticated)
	assert.Empty(t, s.Role)

	s = AuthSession{User: &User{Role: RoleArtist}, IsAuthenticated: true}
	s.Normalize()
	assert.Equal(t, RoleArtist, s.Role)
}

func TestUploadStatus_Terminal(t *testing.T) {
	assert.False(t, UploadPending.Terminal())
	assert.False(t, UploadUploading.Terminal())
	assert.True(t, UploadCompleted.Terminal())
	assert.True(t, UploadFailed.Terminal())
	assert.True(t, UploadCancelled.Terminal())
}
