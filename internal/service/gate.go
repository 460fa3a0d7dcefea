package service

import (
	"context"
	"sync"
	"time"

	"poll-server/internal/domain"
	"poll-server/internal/metrics"
	"poll-server/internal/repository"
)

// SnapshotGate serialises every load-mutate-save sequence behind one
// process-wide lock. The store offers no compare-and-swap, so two
// interleaved writers would otherwise lose an update. Readers share the
// lock and always work from a single Load.
type SnapshotGate struct {
	store repository.SnapshotStore
	mu    sync.RWMutex
	now   func() time.Time
}

func NewSnapshotGate(store repository.SnapshotStore) *SnapshotGate {
	return &SnapshotGate{store: store, now: time.Now}
}

// View returns one consistent snapshot for read-only use.
func (g *SnapshotGate) View(ctx context.Context) domain.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Load(ctx)
}

// Update loads the snapshot, applies fn and saves the result. Nothing is
// saved when fn fails.
func (g *SnapshotGate) Update(ctx context.Context, fn func(s domain.Snapshot, now time.Time) (domain.Snapshot, error)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next, err := fn(g.store.Load(ctx), g.now().UTC())
	if err != nil {
		return err
	}
	return g.store.Save(ctx, next)
}

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = string(domain.KindOf(err))
	}
	metrics.Operations.WithLabelValues(op, result).Inc()
}
