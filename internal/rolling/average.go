package rolling

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/rs/zerolog"
)

// Store is the subset of the cache client the Maintainer depends on. The
// concrete implementation lives in internal/cache; declaring it here keeps
// this package free of a dependency on the Redis client.
type Store interface {
	Get(ctx context.Context, shopID string) (*Record, error)
	Set(ctx context.Context, shopID string, rec *Record) error
}

// ErrNotFound is returned by a Store when no record exists for a shop_id.
var ErrNotFound = errors.New("rolling: record not found")

// Maintainer updates the Merchant Latency Record for a shop_id on every
// observed webhook response time.
//
// Concurrent Observe calls for the same shop_id are serialised with a
// per-key mutex, since the read-modify-write against the cache has no
// compare-and-set and a batch dispatches one goroutine per event.
type Maintainer struct {
	store Store
	limit int
	log   zerolog.Logger
	locks sync.Map // shop_id (string) -> *sync.Mutex
}

// NewMaintainer builds a Maintainer backed by store, keeping at most limit
// response times per merchant (LIMIT_REDIS_MSG).
func NewMaintainer(store Store, limit int, log zerolog.Logger) *Maintainer {
	return &Maintainer{store: store, limit: limit, log: log}
}

// Observe records a single response time (seconds) for shopID, updating the
// rolling window and mean. It no-ops when no record yet exists for shopID —
// materialising a record is outside this component's responsibility.
func (m *Maintainer) Observe(ctx context.Context, shopID string, responseTime float64) {
	lock := m.lockFor(shopID)
	lock.Lock()
	defer lock.Unlock()

	rounded := math.Round(responseTime*100) / 100

	rec, err := m.store.Get(ctx, shopID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return
		}
		m.log.Error().Err(err).Str("shop_id", shopID).Msg("rolling average: cache read failed, skipping observation")
		return
	}

	rec.TimeResponses = append(rec.TimeResponses, rounded)
	if len(rec.TimeResponses) <= m.limit {
		rec.TotalResponses = sum(rec.TimeResponses)
	} else {
		first := rec.TimeResponses[0]
		rec.TimeResponses = rec.TimeResponses[1:]
		rec.TotalResponses = rec.TotalResponses - first + rounded
	}
	rec.AvgResponse = rec.TotalResponses / float64(len(rec.TimeResponses))

	if err := m.store.Set(ctx, shopID, rec); err != nil {
		m.log.Error().Err(err).Str("shop_id", shopID).Msg("rolling average: cache write failed")
	}
}

func (m *Maintainer) lockFor(shopID string) *sync.Mutex {
	v, _ := m.locks.LoadOrStore(shopID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
