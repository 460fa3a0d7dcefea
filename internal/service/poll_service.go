package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"poll-server/internal/ballot"
	"poll-server/internal/directory"
	"poll-server/internal/domain"
	"poll-server/internal/registry"
)

// PollService answers the poll and vote use cases. It is the only caller
// that persists snapshots; registry and ballot only transform them.
type PollService interface {
	CreatePoll(ctx context.Context, ownerID int64, input CreatePollInput) (*domain.Poll, error)
	ListPolls(ctx context.Context) ([]domain.PollSummary, error)
	GetPoll(ctx context.Context, pollID, callerID int64) (*PollDetail, error)
	CastVote(ctx context.Context, pollID, callerID, optionID int64) ([]OptionResult, error)
	UpdatePoll(ctx context.Context, pollID, callerID int64, input UpdatePollInput) error
	DeletePoll(ctx context.Context, pollID, callerID int64) error
}

// CreatePollInput carries unvalidated fields for a new poll.
type CreatePollInput struct {
	Title       string
	Description string
	Options     []string
}

// UpdatePollInput carries optional replacements. Nil and empty are both "keep".
type UpdatePollInput struct {
	Title       *string
	Description *string
}

// OptionResult is an option together with its vote count.
type OptionResult struct {
	ID    int64
	Text  string
	Votes int
}

// PollDetail is a poll as seen by one caller.
type PollDetail struct {
	ID            int64
	Title         string
	Description   string
	CreatedAt     time.Time
	Owner         string
	Options       []OptionResult
	Voted         bool
	VotedOptionID *int64
}

type pollService struct {
	gate *SnapshotGate
}

func NewPollService(gate *SnapshotGate) PollService {
	return &pollService{gate: gate}
}

func (s *pollService) CreatePoll(ctx context.Context, ownerID int64, input CreatePollInput) (poll *domain.Poll, err error) {
	defer func() { observe("create_poll", err) }()

	title := strings.TrimSpace(input.Title)
	if title == "" || len(input.Options) < registry.MinOptions {
		return nil, fmt.Errorf("%w: title and at least two options required", domain.ErrInvalidInput)
	}
	options := make([]string, len(input.Options))
	for i, o := range input.Options {
		options[i] = strings.TrimSpace(o)
		if options[i] == "" {
			return nil, fmt.Errorf("%w: option %d is empty", domain.ErrInvalidInput, i+1)
		}
	}

	var created domain.Poll
	err = s.gate.Update(ctx, func(snap domain.Snapshot, now time.Time) (domain.Snapshot, error) {
		next, p, err := registry.Create(snap, ownerID, title, strings.TrimSpace(input.Description), options, now)
		created = p
		return next, err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *pollService) ListPolls(ctx context.Context) ([]domain.PollSummary, error) {
	return registry.List(s.gate.View(ctx)), nil
}

func (s *pollService) GetPoll(ctx context.Context, pollID, callerID int64) (*PollDetail, error) {
	snap := s.gate.View(ctx)

	poll, err := registry.Get(snap, pollID)
	if err != nil {
		return nil, err
	}

	detail := &PollDetail{
		ID:          poll.ID,
		Title:       poll.Title,
		Description: poll.Description,
		CreatedAt:   poll.CreatedAt,
		Owner:       directory.OwnerName(snap, poll.OwnerID),
		Options:     optionResults(poll, ballot.Tally(snap, poll)),
	}
	if vote, ok := ballot.UserVote(snap, pollID, callerID); ok {
		optionID := vote.OptionID
		detail.Voted = true
		detail.VotedOptionID = &optionID
	}
	return detail, nil
}

func (s *pollService) CastVote(ctx context.Context, pollID, callerID, optionID int64) (results []OptionResult, err error) {
	defer func() { observe("cast_vote", err) }()

	if optionID == 0 {
		return nil, fmt.Errorf("%w: optionId required", domain.ErrInvalidInput)
	}

	err = s.gate.Update(ctx, func(snap domain.Snapshot, now time.Time) (domain.Snapshot, error) {
		next, tally, err := ballot.Cast(snap, pollID, callerID, optionID, now)
		if err != nil {
			return snap, err
		}
		poll, err := registry.Get(next, pollID)
		if err != nil {
			return snap, err
		}
		results = optionResults(poll, tally)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *pollService) UpdatePoll(ctx context.Context, pollID, callerID int64, input UpdatePollInput) (err error) {
	defer func() { observe("update_poll", err) }()

	title := trimmed(input.Title)
	description := trimmed(input.Description)
	return s.gate.Update(ctx, func(snap domain.Snapshot, _ time.Time) (domain.Snapshot, error) {
		return registry.Update(snap, pollID, callerID, title, description)
	})
}

func (s *pollService) DeletePoll(ctx context.Context, pollID, callerID int64) (err error) {
	defer func() { observe("delete_poll", err) }()

	return s.gate.Update(ctx, func(snap domain.Snapshot, _ time.Time) (domain.Snapshot, error) {
		return registry.Delete(snap, pollID, callerID)
	})
}

func optionResults(poll domain.Poll, tally domain.Tally) []OptionResult {
	out := make([]OptionResult, len(poll.Options))
	for i, o := range poll.Options {
		out[i] = OptionResult{ID: o.ID, Text: o.Text, Votes: tally[o.ID]}
	}
	return out
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
