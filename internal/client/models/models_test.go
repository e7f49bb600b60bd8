package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_UserID_NilSafe(t *testing.T) {
	var s *Session
	assert.Equal(t, "", s.UserID())
	assert.Equal(t, "u1", (&Session{User: User{ID: "u1"}}).UserID())
}

func TestSession_ExpiresWithin(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now.Add(time.Minute)}

	assert.True(t, s.ExpiresWithin(now, 2*time.Minute))
	assert.True(t, s.ExpiresWithin(now, time.Minute))
	assert.False(t, s.ExpiresWithin(now, 30*time.Second))
	assert.False(t, (&Session{}).ExpiresWithin(now, time.Hour))
}

func TestProfileUpdate_Validate(t *testing.T) {
	name := "lifter"
	male := GenderMale
	other := Gender("other")

	require.ErrorIs(t, ProfileUpdate{}.Validate(), ErrEmptyUpdate)
	require.ErrorIs(t, ProfileUpdate{Gender: &other}.Validate(), ErrInvalidGender)
	require.NoError(t, ProfileUpdate{Username: &name}.Validate())
	require.NoError(t, ProfileUpdate{Gender: &male}.Validate())
}

func TestProfile_CloneIsDeep(t *testing.T) {
	name := "a"
	p := &Profile{ID: "u1", Username: &name}
	c := p.Clone()

	*c.Username = "b"
	assert.Equal(t, "a", *p.Username)
	assert.Nil(t, (*Profile)(nil).Clone())
}
