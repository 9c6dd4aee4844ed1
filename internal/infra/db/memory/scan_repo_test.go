package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
)

func TestRoundTripPreservesFields(t *testing.T) {
	repo := NewScanRepository()
	ctx := context.Background()
	at := time.Date(2026, 1, 16, 22, 38, 0, 0, time.UTC)

	in := domain.NewScanRecord("1HGCM82633A004352", domain.InspectionResult{
		Grade: "4.2", EstimatedValue: 18500,
		Notes: []string{"Clean CarFax", "Minor rock chips on hood", "Ready for Retail"},
	}, at, 2*time.Millisecond)
	require.NoError(t, repo.Append(ctx, in))
	assert.Equal(t, int64(1), in.ID)

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(in, got[0]); diff != "" {
		t.Errorf("stored record mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Clean CarFax, Minor rock chips on hood, Ready for Retail", got[0].Notes)
}

func TestListRecentNewestFirst(t *testing.T) {
	repo := NewScanRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)

	// insert out of chronological order
	for _, offset := range []int{3, 1, 4, 0, 2} {
		rec := &domain.ScanRecord{Vin: fmt.Sprintf("VIN-%d", offset), ScannedAt: base.Add(time.Duration(offset) * time.Second)}
		require.NoError(t, repo.Append(ctx, rec))
	}

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].ScannedAt.After(got[i].ScannedAt))
	}
	assert.Equal(t, "VIN-4", got[0].Vin)
}

func TestListRecentTieBreaksOnID(t *testing.T) {
	repo := NewScanRepository()
	ctx := context.Background()
	at := time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Append(ctx, &domain.ScanRecord{Vin: "SAME-TIME", ScannedAt: at}))
	}

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestListRecentLimit(t *testing.T) {
	repo := NewScanRepository()
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		require.NoError(t, repo.Append(ctx, &domain.ScanRecord{Vin: "AAAA0"}))
	}

	got, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 10)

	got, err = repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestConcurrentAppendAssignsUniqueIDs(t *testing.T) {
	repo := NewScanRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make(chan int64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := &domain.ScanRecord{Vin: "AAAA0"}
			if err := repo.Append(ctx, rec); err == nil {
				ids <- rec.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestAppendRejectsEmptyVIN(t *testing.T) {
	repo := NewScanRepository()
	assert.ErrorIs(t, repo.Append(context.Background(), &domain.ScanRecord{}), domain.ErrEmptyVIN)
}
