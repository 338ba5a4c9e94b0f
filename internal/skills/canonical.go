package skills

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MaxCanonicalSkills caps the canonical set size per posting.
const MaxCanonicalSkills = 18

// Repository persists canonical skill sets keyed by posting id. It lives
// behind an interface so the excluded storage layer can plug in a database
// implementation; PutIfAbsent must be atomic so concurrent first-time
// creation has exactly one winner.
type Repository interface {
	// Get returns the stored set and whether it exists.
	Get(ctx context.Context, postingID string) ([]string, bool, error)
	// PutIfAbsent stores skills unless a set already exists, returning the
	// set that won.
	PutIfAbsent(ctx context.Context, postingID string, skills []string) ([]string, error)
	// Put stores skills unconditionally (administrative overwrite).
	Put(ctx context.Context, postingID string, skills []string) error
}

// TagsFetcher loads the externally tagged skills for a posting; used only at
// first-time creation.
type TagsFetcher func(ctx context.Context, postingID string) ([]string, error)

// Store is the single source of truth for "what skills does posting X
// require". A set is created exactly once per posting id and never silently
// overwritten, so a percentage computed today and one computed next week use
// the same canonical set even if the posting's tags change upstream.
type Store struct {
	repo      Repository
	fetchTags TagsFetcher
	log       *zap.Logger

	mu       sync.Mutex
	creating map[string]*sync.Mutex // per-posting creation locks
}

// NewStore builds a canonical store over the repository. fetchTags may be nil
// when external tags are unavailable (tests, offline mode).
func NewStore(repo Repository, fetchTags TagsFetcher, log *zap.Logger) *Store {
	return &Store{
		repo:      repo,
		fetchTags: fetchTags,
		log:       log,
		creating:  make(map[string]*sync.Mutex),
	}
}

// creationLock returns the mutex serializing first-time creation for one
// posting id.
func (s *Store) creationLock(postingID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.creating[postingID]
	if !ok {
		lock = &sync.Mutex{}
		s.creating[postingID] = lock
	}
	return lock
}

// EnsureOnce returns the canonical set for the posting, creating it on first
// call from external tags merged with hintedSkills (tags first, dedup by
// normalized token, capped at MaxCanonicalSkills). Once a set exists it is
// returned verbatim and hintedSkills is ignored. A failed tag fetch degrades
// to the hinted list alone; a posting with zero canonical skills yields a
// 0% match, never an error.
func (s *Store) EnsureOnce(ctx context.Context, postingID string, hintedSkills []string) ([]string, error) {
	postingID = strings.TrimSpace(postingID)
	if postingID == "" {
		return []string{}, nil
	}

	if existing, ok, err := s.repo.Get(ctx, postingID); err != nil {
		return nil, fmt.Errorf("failed to read canonical set for %s: %w", postingID, err)
	} else if ok {
		return existing, nil
	}

	lock := s.creationLock(postingID)
	lock.Lock()
	defer lock.Unlock()

	// Re-check under the lock: another request may have created the set.
	if existing, ok, err := s.repo.Get(ctx, postingID); err != nil {
		return nil, fmt.Errorf("failed to read canonical set for %s: %w", postingID, err)
	} else if ok {
		return existing, nil
	}

	var tags []string
	if s.fetchTags != nil {
		fetched, err := s.fetchTags(ctx, postingID)
		if err != nil {
			s.log.Warn("posting tags unavailable, creating canonical set from hints only",
				zap.String("posting_id", postingID),
				zap.Error(err))
		} else {
			tags = fetched
		}
	}

	merged := MergeUnique(tags, hintedSkills, MaxCanonicalSkills)
	stored, err := s.repo.PutIfAbsent(ctx, postingID, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to create canonical set for %s: %w", postingID, err)
	}

	return stored, nil
}

// GetOrEmpty returns the stored canonical set, or an empty list when none
// exists or the repository fails (read paths must not error on enrichment).
func (s *Store) GetOrEmpty(ctx context.Context, postingID string) []string {
	postingID = strings.TrimSpace(postingID)
	if postingID == "" {
		return []string{}
	}
	existing, ok, err := s.repo.Get(ctx, postingID)
	if err != nil {
		s.log.Warn("canonical set read failed", zap.String("posting_id", postingID), zap.Error(err))
		return []string{}
	}
	if !ok {
		return []string{}
	}
	return existing
}

// ForceOverwrite replaces the canonical set. Administrative correction only:
// normal operation never rewrites an existing set.
func (s *Store) ForceOverwrite(ctx context.Context, postingID string, skillList []string) error {
	postingID = strings.TrimSpace(postingID)
	if postingID == "" {
		return fmt.Errorf("empty posting id")
	}
	cleaned := MergeUnique(skillList, nil, MaxCanonicalSkills)
	return s.repo.Put(ctx, postingID, cleaned)
}

// MemoryRepository is the in-process Repository used by default and in tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	sets map[string][]string
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sets: make(map[string][]string)}
}

// Get implements Repository.
func (m *MemoryRepository) Get(_ context.Context, postingID string) ([]string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	skillList, ok := m.sets[postingID]
	if !ok {
		return nil, false, nil
	}
	return append([]string{}, skillList...), true, nil
}

// PutIfAbsent implements Repository.
func (m *MemoryRepository) PutIfAbsent(_ context.Context, postingID string, skillList []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sets[postingID]; ok {
		return append([]string{}, existing...), nil
	}
	m.sets[postingID] = append([]string{}, skillList...)
	return append([]string{}, skillList...), nil
}

// Put implements Repository.
func (m *MemoryRepository) Put(_ context.Context, postingID string, skillList []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[postingID] = append([]string{}, skillList...)
	return nil
}
