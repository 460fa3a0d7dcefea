package domain

import "time"

// Vote records one user's choice on one poll.
type Vote struct {
	ID        int64
	PollID    int64
	OptionID  int64
	UserID    int64
	CreatedAt time.Time
}

// Tally maps option id to the number of votes cast for it.
type Tally map[int64]int

// Total returns the sum of all counts.
func (t Tally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}
