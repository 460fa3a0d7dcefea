package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-server/internal/domain"
)

func TestRegister(t *testing.T) {
	s := domain.EmptySnapshot()

	s, alice, err := Register(s, "alice", "h1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	s, bob, err := Register(s, "bob", "h2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)
	assert.Len(t, s.Users, 2)

	t.Run("duplicate username", func(t *testing.T) {
		after, _, err := Register(s, "alice", "other")
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Len(t, after.Users, 2)
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, u, err := Register(s, "Alice", "h3")
		require.NoError(t, err)
		assert.Equal(t, int64(3), u.ID)
	})

	t.Run("empty username", func(t *testing.T) {
		_, _, err := Register(s, "", "h")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRegisterDoesNotMutateInput(t *testing.T) {
	base := domain.Snapshot{Users: make([]domain.User, 1, 4)}
	base.Users[0] = domain.User{ID: 1, Username: "alice"}

	next, _, err := Register(base, "bob", "h")
	require.NoError(t, err)
	next.Users[0].Username = "changed"

	assert.Equal(t, "alice", base.Users[0].Username)
	assert.Len(t, base.Users, 1)
}

func TestLookups(t *testing.T) {
	s := domain.Snapshot{Users: []domain.User{
		{ID: 1, Username: "alice"},
		{ID: 5, Username: "bob"},
	}}

	u, ok := FindByUsername(s, "bob")
	require.True(t, ok)
	assert.Equal(t, int64(5), u.ID)

	_, ok = FindByUsername(s, "carol")
	assert.False(t, ok)

	u, ok = FindByID(s, 1)
	require.True(t, ok)
	assert.Equal(t, "alice", u.Username)

	assert.Equal(t, "bob", OwnerName(s, 5))
	assert.Equal(t, UnknownOwner, OwnerName(s, 42))
}
