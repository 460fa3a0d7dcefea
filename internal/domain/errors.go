package domain

import "errors"

var (
	// ErrInvalidInput indicates malformed or missing caller-supplied data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates an authenticated caller that may not perform the action.
	ErrForbidden = errors.New("not authorized")
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrLocked indicates an edit attempted after votes have been cast.
	ErrLocked = errors.New("locked")
	// ErrStorage indicates the snapshot medium could not be read or written.
	ErrStorage = errors.New("storage failure")
)

// Kind is the machine-checkable tag carried by every error returned to clients.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindLocked       Kind = "locked"
	KindStorage      Kind = "storage_failure"
	KindInternal     Kind = "internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidInput, KindInvalidInput},
	{ErrUnauthorized, KindUnauthorized},
	{ErrForbidden, KindForbidden},
	{ErrNotFound, KindNotFound},
	{ErrConflict, KindConflict},
	{ErrLocked, KindLocked},
	{ErrStorage, KindStorage},
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
