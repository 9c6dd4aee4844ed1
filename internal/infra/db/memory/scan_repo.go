// Package memory is an in-process scan store for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
)

type ScanRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.ScanRecord
}

func NewScanRepository() *ScanRepository {
	return &ScanRepository{}
}

func (r *ScanRepository) Append(ctx context.Context, rec *domain.ScanRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	r.rows = append(r.rows, *rec)
	return nil
}

func (r *ScanRepository) ListRecent(ctx context.Context, limit int) ([]*domain.ScanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	r.mu.RLock()
	sorted := make([]domain.ScanRecord, len(r.rows))
	copy(sorted, r.rows)
	r.mu.RUnlock()

	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].ScannedAt.Equal(sorted[j].ScannedAt) {
			return sorted[i].ScannedAt.After(sorted[j].ScannedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]*domain.ScanRecord, len(sorted))
	for i := range sorted {
		out[i] = &sorted[i]
	}
	return out, nil
}

// EnsureSchema has nothing to create.
func (r *ScanRepository) EnsureSchema(context.Context) error { return nil }

func (r *ScanRepository) Ping(context.Context) error { return nil }
