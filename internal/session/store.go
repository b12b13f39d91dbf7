// internal/session/store.go
//
// Folio – Form sessions: in-memory store of per-visitor state.
//
// Context
//   Every visitor with an open contact form owns one entry (in practice a
//   form Controller plus its feedback sinks).  Entries are created lazily on
//   the first call carrying a new session ID and kept in a sync.Map.  A
//   singleflight barrier makes concurrent first calls share one entry.
//
// Notes
//   •  The evictor drops entries idle longer than IdleTTL and, under
//      pressure, the least recently used ones beyond MaxEntries.
//   •  Entries with a submission in flight are never evicted; their attempt
//      must be able to apply its result.
//
//------------------------------------------------------------------------------

package session

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/folio/internal/metrics"
)

// Defaults used when Options leave a value at zero.
const (
	DefaultIdleTTL       = 30 * time.Minute
	DefaultMaxEntries    = 1000
	DefaultEvictInterval = time.Minute
)

// Entry is the value type held by a Store.
type Entry interface {
	// Busy reports work in flight; busy entries are not evicted.
	Busy() bool
}

// Options tune a Store.
type Options struct {
	IdleTTL       time.Duration
	MaxEntries    int
	EvictInterval time.Duration
	Log           *zap.SugaredLogger
}

type slot[V Entry] struct {
	val      V
	lastSeen int64 // UnixNano
}

// Store lazily creates entries with newFn and evicts them on idle TTL or
// LRU pressure.
type Store[V Entry] struct {
	newFn      func(id string) (V, error)
	sfg        singleflight.Group
	m          sync.Map
	idleTTL    time.Duration
	maxEntries int
	log        *zap.SugaredLogger

	ticker    *time.Ticker
	stop      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewStore constructs a Store and starts the background evictor.
func NewStore[V Entry](newFn func(id string) (V, error), o Options) *Store[V] {
	if o.IdleTTL <= 0 {
		o.IdleTTL = DefaultIdleTTL
	}
	if o.MaxEntries <= 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	if o.EvictInterval <= 0 {
		o.EvictInterval = DefaultEvictInterval
	}
	if o.Log == nil {
		o.Log = zap.S()
	}
	s := &Store[V]{
		newFn:      newFn,
		idleTTL:    o.IdleTTL,
		maxEntries: o.MaxEntries,
		log:        o.Log,
		ticker:     time.NewTicker(o.EvictInterval),
		stop:       make(chan struct{}),
		now:        time.Now,
	}
	go s.evictLoop()
	return s
}

// Get returns the entry for id, creating it on demand.
func (s *Store[V]) Get(id string) (V, error) {
	if v, ok := s.touch(id); ok {
		return v, nil
	}

	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := s.touch(id); ok {
			return v, nil
		}
		val, err := s.newFn(id)
		if err != nil {
			return nil, err
		}
		s.m.Store(id, &slot[V]{val: val, lastSeen: s.now().UnixNano()})
		metrics.ActiveSessions.Inc()
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Peek returns the entry for id without creating it or refreshing its age.
func (s *Store[V]) Peek(id string) (V, bool) {
	if v, ok := s.m.Load(id); ok {
		return v.(*slot[V]).val, true
	}
	var zero V
	return zero, false
}

// Len reports the number of live entries.
func (s *Store[V]) Len() int {
	n := 0
	s.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Close stops the evictor.  Entries stay readable.
func (s *Store[V]) Close() {
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		close(s.stop)
	})
}

func (s *Store[V]) touch(id string) (V, bool) {
	if v, ok := s.m.Load(id); ok {
		sl := v.(*slot[V])
		atomic.StoreInt64(&sl.lastSeen, s.now().UnixNano())
		return sl.val, true
	}
	var zero V
	return zero, false
}
