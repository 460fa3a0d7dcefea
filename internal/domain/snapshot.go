package domain

// Snapshot is the whole dataset, loaded and saved as one unit.
type Snapshot struct {
	Users []User
	Polls []Poll
	Votes []Vote
}

// EmptySnapshot returns a snapshot with empty, non-nil collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Users: []User{},
		Polls: []Poll{},
		Votes: []Vote{},
	}
}

// NextID returns max(existing ids)+1, or 1 for an empty collection.
// Ids freed by deletion are therefore never handed out again while a
// higher id is still present.
func NextID[T any](items []T, id func(T) int64) int64 {
	var highest int64
	for _, item := range items {
		if v := id(item); v > highest {
			highest = v
		}
	}
	return highest + 1
}

func UserID(u User) int64 { return u.ID }
func PollID(p Poll) int64 { return p.ID }
func VoteID(v Vote) int64 { return v.ID }
