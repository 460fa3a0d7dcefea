package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-server/internal/directory"
	"poll-server/internal/domain"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func seed(t *testing.T) domain.Snapshot {
	t.Helper()
	s := domain.EmptySnapshot()
	s, _, err := directory.Register(s, "alice", "h")
	require.NoError(t, err)
	s, _, err = directory.Register(s, "bob", "h")
	require.NoError(t, err)
	return s
}

func TestCreate(t *testing.T) {
	s := seed(t)

	s, poll, err := Create(s, 1, "Lunch", "", []string{"Pizza", "Sushi"}, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), poll.ID)
	assert.Equal(t, []domain.Option{{ID: 1, Text: "Pizza"}, {ID: 2, Text: "Sushi"}}, poll.Options)
	assert.Equal(t, t0, poll.CreatedAt)
	assert.Len(t, s.Polls, 1)

	tests := []struct {
		name    string
		title   string
		options []string
	}{
		{"missing title", "", []string{"a", "b"}},
		{"no options", "T", nil},
		{"one option", "T", []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, _, err := Create(s, 1, tt.title, "", tt.options, t0)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Len(t, after.Polls, 1)
		})
	}
}

func TestIDsNeverReused(t *testing.T) {
	s := seed(t)
	var err error
	for i := 0; i < 3; i++ {
		s, _, err = Create(s, 1, "P", "", []string{"a", "b"}, t0)
		require.NoError(t, err)
	}

	s, err = Delete(s, 2, 1)
	require.NoError(t, err)

	_, poll, err := Create(s, 1, "P", "", []string{"a", "b"}, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), poll.ID)
}

func TestList(t *testing.T) {
	s := seed(t)
	var err error
	s, _, err = Create(s, 1, "old", "", []string{"a", "b"}, t0)
	require.NoError(t, err)
	s, _, err = Create(s, 2, "new", "", []string{"a", "b"}, t0.Add(time.Minute))
	require.NoError(t, err)
	s, _, err = Create(s, 99, "same-instant", "", []string{"a", "b"}, t0)
	require.NoError(t, err)

	list := List(s)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].Title)
	assert.Equal(t, "bob", list[0].Owner)
	assert.Equal(t, "old", list[1].Title)
	assert.Equal(t, "alice", list[1].Owner)
	assert.Equal(t, "same-instant", list[2].Title)
	assert.Equal(t, directory.UnknownOwner, list[2].Owner)
}

func TestGet(t *testing.T) {
	s := seed(t)
	s, created, err := Create(s, 1, "Lunch", "d", []string{"a", "b"}, t0)
	require.NoError(t, err)

	got, err := Get(s, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = Get(s, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	s := seed(t)
	s, _, err := Create(s, 1, "Lunch", "midday", []string{"a", "b"}, t0)
	require.NoError(t, err)

	t.Run("owner edits title only", func(t *testing.T) {
		after, err := Update(s, 1, 1, strPtr("Dinner"), nil)
		require.NoError(t, err)
		p, _ := Get(after, 1)
		assert.Equal(t, "Dinner", p.Title)
		assert.Equal(t, "midday", p.Description)

		orig, _ := Get(s, 1)
		assert.Equal(t, "Lunch", orig.Title)
	})

	t.Run("empty values keep existing", func(t *testing.T) {
		after, err := Update(s, 1, 1, strPtr(""), strPtr(""))
		require.NoError(t, err)
		p, _ := Get(after, 1)
		assert.Equal(t, "Lunch", p.Title)
		assert.Equal(t, "midday", p.Description)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := Update(s, 9, 1, strPtr("x"), nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non owner", func(t *testing.T) {
		_, err := Update(s, 1, 2, strPtr("x"), nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("locked after a vote", func(t *testing.T) {
		voted := s
		voted.Votes = []domain.Vote{{ID: 1, PollID: 1, OptionID: 2, UserID: 2}}
		_, err := Update(voted, 1, 1, strPtr("Dinner"), nil)
		assert.ErrorIs(t, err, domain.ErrLocked)
		p, _ := Get(voted, 1)
		assert.Equal(t, "Lunch", p.Title)
	})
}

func TestDeleteCascadesVotes(t *testing.T) {
	s := seed(t)
	var err error
	s, _, err = Create(s, 1, "A", "", []string{"a", "b"}, t0)
	require.NoError(t, err)
	s, _, err = Create(s, 1, "B", "", []string{"a", "b"}, t0)
	require.NoError(t, err)
	s.Votes = []domain.Vote{
		{ID: 1, PollID: 1, OptionID: 1, UserID: 1},
		{ID: 2, PollID: 2, OptionID: 2, UserID: 1},
		{ID: 3, PollID: 1, OptionID: 2, UserID: 2},
	}

	_, err = Delete(s, 1, 2)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = Delete(s, 5, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	after, err := Delete(s, 1, 1)
	require.NoError(t, err)
	_, err = Get(after, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.Len(t, after.Votes, 1)
	assert.Equal(t, int64(2), after.Votes[0].PollID)

	assert.Len(t, s.Polls, 2)
	assert.Len(t, s.Votes, 3)
}
