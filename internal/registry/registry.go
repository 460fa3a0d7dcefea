// Package registry owns the poll lifecycle over an in-memory snapshot.
//
// Every function is a pure transformation: rule violations are reported
// before anything changes, and the snapshot passed in is never modified.
package registry

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"poll-server/internal/directory"
	"poll-server/internal/domain"
)

// MinOptions is the smallest number of options a poll may have.
const MinOptions = 2

// Create appends a new poll owned by ownerID.
func Create(s domain.Snapshot, ownerID int64, title, description string, optionTexts []string, now time.Time) (domain.Snapshot, domain.Poll, error) {
	if title == "" {
		return s, domain.Poll{}, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(optionTexts) < MinOptions {
		return s, domain.Poll{}, fmt.Errorf("%w: at least %d options required", domain.ErrInvalidInput, MinOptions)
	}

	options := make([]domain.Option, len(optionTexts))
	for i, text := range optionTexts {
		options[i] = domain.Option{ID: int64(i + 1), Text: text}
	}

	poll := domain.Poll{
		ID:          domain.NextID(s.Polls, domain.PollID),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		Options:     options,
	}
	s.Polls = append(slices.Clone(s.Polls), poll)
	return s, poll, nil
}

// List returns poll summaries, newest first. Polls created at the same
// instant keep their stored order.
func List(s domain.Snapshot) []domain.PollSummary {
	polls := slices.Clone(s.Polls)
	sort.SliceStable(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})

	out := make([]domain.PollSummary, len(polls))
	for i, p := range polls {
		out[i] = domain.PollSummary{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			Owner:       directory.OwnerName(s, p.OwnerID),
		}
	}
	return out
}

// Get returns the poll with the given id.
func Get(s domain.Snapshot, pollID int64) (domain.Poll, error) {
	_, poll, err := find(s, pollID)
	return poll, err
}

// Update replaces title and/or description. A nil or empty value keeps the
// current field, so a client cannot clear a field through this call.
func Update(s domain.Snapshot, pollID, callerID int64, title, description *string) (domain.Snapshot, error) {
	idx, poll, err := findOwned(s, pollID, callerID)
	if err != nil {
		return s, err
	}
	if hasVotes(s, pollID) {
		return s, fmt.Errorf("%w: cannot edit poll after votes have been cast", domain.ErrLocked)
	}

	if title != nil && *title != "" {
		poll.Title = *title
	}
	if description != nil && *description != "" {
		poll.Description = *description
	}

	polls := slices.Clone(s.Polls)
	polls[idx] = poll
	s.Polls = polls
	return s, nil
}

// Delete removes a poll and every vote cast on it.
func Delete(s domain.Snapshot, pollID, callerID int64) (domain.Snapshot, error) {
	idx, _, err := findOwned(s, pollID, callerID)
	if err != nil {
		return s, err
	}

	s.Polls = slices.Delete(slices.Clone(s.Polls), idx, idx+1)
	votes := make([]domain.Vote, 0, len(s.Votes))
	for _, v := range s.Votes {
		if v.PollID != pollID {
			votes = append(votes, v)
		}
	}
	s.Votes = votes
	return s, nil
}

func find(s domain.Snapshot, pollID int64) (int, domain.Poll, error) {
	for i, p := range s.Polls {
		if p.ID == pollID {
			return i, p, nil
		}
	}
	return -1, domain.Poll{}, fmt.Errorf("%w: poll not found", domain.ErrNotFound)
}

func findOwned(s domain.Snapshot, pollID, callerID int64) (int, domain.Poll, error) {
	idx, poll, err := find(s, pollID)
	if err != nil {
		return idx, poll, err
	}
	if poll.OwnerID != callerID {
		return idx, poll, fmt.Errorf("%w: only the owner may change this poll", domain.ErrForbidden)
	}
	return idx, poll, nil
}

func hasVotes(s domain.Snapshot, pollID int64) bool {
	for _, v := range s.Votes {
		if v.PollID == pollID {
			return true
		}
	}
	return false
}
