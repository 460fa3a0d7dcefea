package domain

import "time"

// Option is one choice of a poll. Option ids run 1..N in creation order.
type Option struct {
	ID   int64
	Text string
}

// Poll is a single-choice poll owned by a user.
type Poll struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description string
	CreatedAt   time.Time
	Options     []Option
}

// HasOption reports whether id names one of the poll's options.
func (p Poll) HasOption(id int64) bool {
	for _, o := range p.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// PollSummary is the list view of a poll with its owner name resolved.
type PollSummary struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	Owner       string
}
