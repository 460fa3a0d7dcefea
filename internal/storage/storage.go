package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Read when nothing has been written yet.
var ErrNotExist = errors.New("snapshot does not exist")

// Medium persists one opaque snapshot blob. Write replaces the whole blob.
type Medium interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
