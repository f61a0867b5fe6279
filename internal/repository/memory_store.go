package repository

import (
	"context"
	"errors"
	"hash/fnv"
	"maps"
	"sync"
	"time"

	"shop-chat-agent/internal/domain"
)

// DefaultTTL is how long a saved session context stays readable.
const DefaultTTL = 30 * time.Minute

const shardCount = 32

type shard struct {
	mu      sync.RWMutex
	entries map[string]domain.SessionContext
}

// MemoryStore is a process-local session store. Keys are spread over
// independently locked shards so requests for different users rarely share
// a lock. Writes to the same user are last-write-wins.
type MemoryStore struct {
	shards [shardCount]*shard
	ttl    time.Duration
	now    func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryStore creates a MemoryStore. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{ttl: ttl, now: time.Now, stop: make(chan struct{})}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]domain.SessionContext)}
	}
	return s
}

func (s *MemoryStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%shardCount]
}

// Get returns a copy of the stored context, or false when absent or expired.
// Expired entries are evicted on read.
func (s *MemoryStore) Get(_ context.Context, userID string) (domain.SessionContext, bool, error) {
	sh := s.shardFor(userID)
	sh.mu.RLock()
	sc, ok := sh.entries[userID]
	sh.mu.RUnlock()
	if !ok {
		return domain.SessionContext{}, false, nil
	}
	if expired(sc.SavedAt, s.now(), s.ttl) {
		sh.mu.Lock()
		if cur, ok := sh.entries[userID]; ok && cur.SavedAt.Equal(sc.SavedAt) {
			delete(sh.entries, userID)
		}
		sh.mu.Unlock()
		return domain.SessionContext{}, false, nil
	}
	sc.Context = maps.Clone(sc.Context)
	return sc, true, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, values map[string]any) error {
	if userID == "" {
		return errors.New("repository: Save: user id is required")
	}
	sc := domain.SessionContext{UserID: userID, Context: maps.Clone(values), SavedAt: s.now()}
	sh := s.shardFor(userID)
	sh.mu.Lock()
	sh.entries[userID] = sc
	sh.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	delete(sh.entries, userID)
	sh.mu.Unlock()
	return nil
}

// Len counts stored entries, expired or not.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}

// Sweep evicts every expired entry and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, sc := range sh.entries {
			if expired(sc.SavedAt, now, s.ttl) {
				delete(sh.entries, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// StartJanitor sweeps expired entries every interval until Close is called.
// It must be called at most once.
func (s *MemoryStore) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = s.ttl
	}
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Close stops the janitor, if running, and waits for it to exit.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.done != nil {
		<-s.done
	}
	return nil
}

// expired reports whether an entry saved at savedAt has outlived ttl. An entry
// is live only while its age is strictly below ttl.
func expired(savedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(savedAt) >= ttl
}
