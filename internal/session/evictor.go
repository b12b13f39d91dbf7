// evictor.go houses the eviction loop for Store.  Every EvictInterval it
// scans the map and removes:
//
//   - entries idle longer than idleTTL
//   - least-recently-used entries when map size exceeds maxEntries
//
// Busy entries are skipped by both passes.  Each eviction is logged and
// updates Prometheus counters.
package session

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/yanizio/folio/internal/metrics"
)

func (s *Store[V]) evictLoop() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C:
			s.evict()
		}
	}
}

// evict runs one idle pass followed by one LRU pass.
func (s *Store[V]) evict() {
	now := s.now().UnixNano()
	var count int

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	s.m.Range(func(key, value any) bool {
		sl := value.(*slot[V])
		idle := time.Duration(now - atomic.LoadInt64(&sl.lastSeen))
		if idle > s.idleTTL && !sl.val.Busy() {
			s.remove(key)
			s.log.Debugw("form session evicted", "session", key, "idle", idle.Truncate(time.Second))
			return true
		}
		count++
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	if count <= s.maxEntries {
		return
	}
	type kv struct {
		key any
		at  int64
	}
	var all []kv
	s.m.Range(func(key, value any) bool {
		sl := value.(*slot[V])
		if !sl.val.Busy() {
			all = append(all, kv{key: key, at: atomic.LoadInt64(&sl.lastSeen)})
		}
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
	for i := 0; i < count-s.maxEntries && i < len(all); i++ {
		s.remove(all[i].key)
		s.log.Debugw("form session evicted (LRU pressure)", "session", all[i].key)
	}
}

func (s *Store[V]) remove(key any) {
	if _, loaded := s.m.LoadAndDelete(key); loaded {
		metrics.SessionEvictTotal.Inc()
		metrics.ActiveSessions.Dec()
	}
}
