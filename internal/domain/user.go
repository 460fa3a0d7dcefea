package domain

// User is a registered identity. Users are never mutated or deleted once created.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}
