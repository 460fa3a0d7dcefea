package ballot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poll-server/internal/domain"
	"poll-server/internal/registry"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func lunchPoll(t *testing.T) domain.Snapshot {
	t.Helper()
	s := domain.EmptySnapshot()
	s, _, err := registry.Create(s, 1, "Lunch", "", []string{"Pizza", "Sushi"}, t0)
	require.NoError(t, err)
	s, _, err = registry.Create(s, 1, "Other", "", []string{"x", "y", "z"}, t0)
	require.NoError(t, err)
	return s
}

func countVotes(s domain.Snapshot, pollID int64) int {
	n := 0
	for _, v := range s.Votes {
		if v.PollID == pollID {
			n++
		}
	}
	return n
}

func TestTallyEmpty(t *testing.T) {
	s := lunchPoll(t)
	poll, err := registry.Get(s, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{1: 0, 2: 0}, Tally(s, poll))
}

func TestCastOncePerUser(t *testing.T) {
	s := lunchPoll(t)

	s, tally, err := Cast(s, 1, 2, 2, t0)
	require.NoError(t, err)
	assert.Equal(t, domain.Tally{1: 0, 2: 1}, tally)

	for i := 0; i < 3; i++ {
		after, tally, err := Cast(s, 1, 2, 1, t0)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Nil(t, tally)
		assert.Len(t, after.Votes, 1)
	}

	poll, _ := registry.Get(s, 1)
	assert.Equal(t, domain.Tally{1: 0, 2: 1}, Tally(s, poll))

	v, ok := UserVote(s, 1, 2)
	require.True(t, ok)
	assert.Equal(t, int64(2), v.OptionID)
	assert.Equal(t, int64(1), v.ID)

	_, ok = UserVote(s, 2, 2)
	assert.False(t, ok)
}

func TestCastErrors(t *testing.T) {
	s := lunchPoll(t)

	_, _, err := Cast(s, 9, 1, 1, t0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = Cast(s, 1, 1, 3, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = Cast(s, 1, 1, 0, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTallySumMatchesVotes(t *testing.T) {
	s := lunchPoll(t)
	var err error
	casts := []struct{ poll, user, option int64 }{
		{1, 1, 1}, {1, 2, 2}, {1, 3, 2}, {2, 1, 3}, {2, 2, 1}, {1, 1, 2},
	}
	for _, c := range casts {
		next, _, castErr := Cast(s, c.poll, c.user, c.option, t0)
		if castErr == nil {
			s = next
		}
		for _, id := range []int64{1, 2} {
			poll, getErr := registry.Get(s, id)
			require.NoError(t, getErr)
			assert.Equal(t, countVotes(s, id), Tally(s, poll).Total())
		}
		err = castErr
	}
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, s.Votes, 5)
}
