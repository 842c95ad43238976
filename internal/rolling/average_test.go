package rolling

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*Record)}
}

func (f *fakeStore) Get(_ context.Context, shopID string) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[shopID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	cp.TimeResponses = append([]float64(nil), rec.TimeResponses...)
	return &cp, nil
}

func (f *fakeStore) Set(_ context.Context, shopID string, rec *Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[shopID] = rec
	return nil
}

func TestObserve_NoopWhenRecordAbsent(t *testing.T) {
	store := newFakeStore()
	m := NewMaintainer(store, 3, zerolog.Nop())

	m.Observe(context.Background(), "S1", 1.23)

	_, err := store.Get(context.Background(), "S1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestObserve_WindowGrowsUntilLimit(t *testing.T) {
	store := newFakeStore()
	store.records["S1"] = &Record{}
	m := NewMaintainer(store, 3, zerolog.Nop())
	ctx := context.Background()

	m.Observe(ctx, "S1", 1.0)
	m.Observe(ctx, "S1", 2.0)

	rec, err := store.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 2.0}, rec.TimeResponses)
	assert.InDelta(t, 3.0, rec.TotalResponses, 1e-9)
	assert.InDelta(t, 1.5, rec.AvgResponse, 1e-9)
}

func TestObserve_RolloverScenario(t *testing.T) {
	store := newFakeStore()
	store.records["S1"] = &Record{}
	m := NewMaintainer(store, 3, zerolog.Nop())
	ctx := context.Background()

	for _, v := range []float64{1.0, 2.0, 3.0, 4.0} {
		m.Observe(ctx, "S1", v)
	}

	rec, err := store.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, []float64{2.0, 3.0, 4.0}, rec.TimeResponses)
	assert.InDelta(t, 9.0, rec.TotalResponses, 1e-9)
	assert.InDelta(t, 3.0, rec.AvgResponse, 1e-9)
}

func TestObserve_RoundsToTwoDecimals(t *testing.T) {
	store := newFakeStore()
	store.records["S1"] = &Record{}
	m := NewMaintainer(store, 3, zerolog.Nop())
	ctx := context.Background()

	m.Observe(ctx, "S1", 1.23456)

	rec, err := store.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.23}, rec.TimeResponses)
}

func TestObserve_ConcurrentSameShopSerialised(t *testing.T) {
	store := newFakeStore()
	store.records["S1"] = &Record{}
	m := NewMaintainer(store, 100, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Observe(ctx, "S1", 1.0)
		}()
	}
	wg.Wait()

	rec, err := store.Get(ctx, "S1")
	require.NoError(t, err)
	assert.Len(t, rec.TimeResponses, 50)
	assert.InDelta(t, 50.0, rec.TotalResponses, 1e-9)
}
