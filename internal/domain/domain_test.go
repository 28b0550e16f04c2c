package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("athlete")
	assert.True(t, ok)
	assert.Equal(t, RoleAthlete, r)

	r, ok = ParseRole(" Coach ")
	assert.True(t, ok)
	assert.Equal(t, RoleCoach, r)

	r, ok = ParseRole("sai_admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, r)

	_, ok = ParseRole("trainer")
	assert.False(t, ok)
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, PairKey("athlete_a", "coach_b"), PairKey("coach_b", "athlete_a"))
	assert.Equal(t, "a|b", PairKey("b", "a"))
}

func TestConnection_Counterpart(t *testing.T) {
	c := &Connection{FromUserID: "u1", ToUserID: "u2"}
	assert.Equal(t, "u2", c.Counterpart("u1"))
	assert.Equal(t, "u1", c.Counterpart("u2"))
}

func TestProfileUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ProfileUpdate{}.IsEmpty())
	name := "x"
	assert.False(t, ProfileUpdate{Name: &name}.IsEmpty())
	assert.False(t, ProfileUpdate{Skills: []string{}}.IsEmpty())
}
