package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"poll-server/internal/domain"
	"poll-server/internal/metrics"
	"poll-server/internal/storage"
)

// SnapshotStore loads and saves the whole dataset through a storage medium.
// It holds no domain logic and no locks; callers serialise writers.
type SnapshotStore interface {
	// Load never fails: an unreadable or corrupt medium yields an empty
	// snapshot and an error log entry.
	Load(ctx context.Context) domain.Snapshot
	Save(ctx context.Context, s domain.Snapshot) error
}

type snapshotStore struct {
	medium storage.Medium
	logger *logrus.Logger
}

func NewSnapshotStore(medium storage.Medium, logger *logrus.Logger) SnapshotStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &snapshotStore{medium: medium, logger: logger}
}

func (r *snapshotStore) Load(ctx context.Context) domain.Snapshot {
	log := r.logger.WithField("backend", r.medium.Name())

	data, err := r.medium.Read(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		empty := domain.EmptySnapshot()
		if err := r.Save(ctx, empty); err != nil {
			log.WithError(err).Error("failed to initialise snapshot")
		}
		return empty
	}
	if err != nil {
		metrics.SnapshotLoadFailures.WithLabelValues(r.medium.Name()).Inc()
		log.WithError(err).Error("failed to load snapshot, continuing with empty dataset")
		return domain.EmptySnapshot()
	}

	s, err := decodeSnapshot(data)
	if err != nil {
		metrics.SnapshotLoadFailures.WithLabelValues(r.medium.Name()).Inc()
		log.WithError(err).Error("failed to decode snapshot, continuing with empty dataset")
		return domain.EmptySnapshot()
	}
	return s
}

func (r *snapshotStore) Save(ctx context.Context, s domain.Snapshot) error {
	data, err := encodeSnapshot(s)
	if err != nil {
		metrics.SnapshotSaves.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: encode snapshot: %v", domain.ErrStorage, err)
	}
	if err := r.medium.Write(ctx, data); err != nil {
		metrics.SnapshotSaves.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}
	metrics.SnapshotSaves.WithLabelValues("ok").Inc()
	return nil
}

// The persisted layout matches the data.json written by earlier releases:
// snake_case references and created_at as Unix milliseconds.
type snapshotRecord struct {
	Users []userRecord `json:"users"`
	Polls []pollRecord `json:"polls"`
	Votes []voteRecord `json:"votes"`
}

type userRecord struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

type optionRecord struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type pollRecord struct {
	ID          int64          `json:"id"`
	OwnerID     int64          `json:"owner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CreatedAt   int64          `json:"created_at"`
	Options     []optionRecord `json:"options"`
}

type voteRecord struct {
	ID        int64 `json:"id"`
	PollID    int64 `json:"poll_id"`
	OptionID  int64 `json:"option_id"`
	UserID    int64 `json:"user_id"`
	CreatedAt int64 `json:"created_at"`
}

func encodeSnapshot(s domain.Snapshot) ([]byte, error) {
	rec := snapshotRecord{
		Users: make([]userRecord, len(s.Users)),
		Polls: make([]pollRecord, len(s.Polls)),
		Votes: make([]voteRecord, len(s.Votes)),
	}
	for i, u := range s.Users {
		rec.Users[i] = userRecord{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}
	}
	for i, p := range s.Polls {
		options := make([]optionRecord, len(p.Options))
		for j, o := range p.Options {
			options[j] = optionRecord{ID: o.ID, Text: o.Text}
		}
		rec.Polls[i] = pollRecord{
			ID:          p.ID,
			OwnerID:     p.OwnerID,
			Title:       p.Title,
			Description: p.Description,
			CreatedAt:   p.CreatedAt.UnixMilli(),
			Options:     options,
		}
	}
	for i, v := range s.Votes {
		rec.Votes[i] = voteRecord{
			ID:        v.ID,
			PollID:    v.PollID,
			OptionID:  v.OptionID,
			UserID:    v.UserID,
			CreatedAt: v.CreatedAt.UnixMilli(),
		}
	}
	return json.MarshalIndent(rec, "", "  ")
}

func decodeSnapshot(data []byte) (domain.Snapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	s := domain.Snapshot{
		Users: make([]domain.User, len(rec.Users)),
		Polls: make([]domain.Poll, len(rec.Polls)),
		Votes: make([]domain.Vote, len(rec.Votes)),
	}
	for i, u := range rec.Users {
		s.Users[i] = domain.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash}
	}
	for i, p := range rec.Polls {
		options := make([]domain.Option, len(p.Options))
		for j, o := range p.Options {
			options[j] = domain.Option{ID: o.ID, Text: o.Text}
		}
		s.Polls[i] = domain.Poll{
			ID:          p.ID,
			OwnerID:     p.OwnerID,
			Title:       p.Title,
			Description: p.Description,
			CreatedAt:   time.UnixMilli(p.CreatedAt).UTC(),
			Options:     options,
		}
	}
	for i, v := range rec.Votes {
		s.Votes[i] = domain.Vote{
			ID:        v.ID,
			PollID:    v.PollID,
			OptionID:  v.OptionID,
			UserID:    v.UserID,
			CreatedAt: time.UnixMilli(v.CreatedAt).UTC(),
		}
	}
	return s, nil
}
