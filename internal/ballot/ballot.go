// Package ballot casts and counts votes over an in-memory snapshot.
package ballot

import (
	"fmt"
	"slices"
	"time"

	"poll-server/internal/domain"
	"poll-server/internal/registry"
)

// Tally counts votes per option of poll. Options without votes count zero.
func Tally(s domain.Snapshot, poll domain.Poll) domain.Tally {
	tally := make(domain.Tally, len(poll.Options))
	for _, o := range poll.Options {
		tally[o.ID] = 0
	}
	for _, v := range s.Votes {
		if v.PollID != poll.ID {
			continue
		}
		if _, ok := tally[v.OptionID]; ok {
			tally[v.OptionID]++
		}
	}
	return tally
}

// UserVote returns the vote userID cast on pollID, if any.
func UserVote(s domain.Snapshot, pollID, userID int64) (domain.Vote, bool) {
	for _, v := range s.Votes {
		if v.PollID == pollID && v.UserID == userID {
			return v, true
		}
	}
	return domain.Vote{}, false
}

// Cast records userID's vote for optionID and returns the updated tally.
// A user votes at most once per poll.
func Cast(s domain.Snapshot, pollID, userID, optionID int64, now time.Time) (domain.Snapshot, domain.Tally, error) {
	poll, err := registry.Get(s, pollID)
	if err != nil {
		return s, nil, err
	}
	if !poll.HasOption(optionID) {
		return s, nil, fmt.Errorf("%w: invalid option", domain.ErrInvalidInput)
	}
	if _, voted := UserVote(s, pollID, userID); voted {
		return s, nil, fmt.Errorf("%w: user already voted", domain.ErrConflict)
	}

	vote := domain.Vote{
		ID:        domain.NextID(s.Votes, domain.VoteID),
		PollID:    pollID,
		OptionID:  optionID,
		UserID:    userID,
		CreatedAt: now,
	}
	s.Votes = append(slices.Clone(s.Votes), vote)
	return s, Tally(s, poll), nil
}
