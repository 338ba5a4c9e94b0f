// Package snapshot keeps the append-only history of analysis results. Rows
// are immutable once recorded: progress over time is computed by comparing
// snapshots, never by editing them.
package snapshot

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SkillScore is one scored skill inside a profile analysis.
type SkillScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Kind  string `json:"kind"` // "soft" or "hard"
}

// SkillSnapshot captures one profile analysis for a seeker.
type SkillSnapshot struct {
	ID              string       `json:"id"`
	SeekerID        string       `json:"seeker_id"`
	PersonalityType string       `json:"personality_type"`
	Skills          []SkillScore `json:"skills"`
	Note            string       `json:"note,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// MarketFitSnapshot captures one market-gap computation for a seeker and
// role.
type MarketFitSnapshot struct {
	ID        string    `json:"id"`
	SeekerID  string    `json:"seeker_id"`
	Role      string    `json:"role"`
	Percent   int       `json:"percent"`
	Have      []string  `json:"have"`
	Missing   []string  `json:"missing"`
	TopMarket []string  `json:"top_market"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Recorder persists snapshots. Implementations assign ID and CreatedAt on
// write and never mutate stored rows.
type Recorder interface {
	RecordSkills(ctx context.Context, snap SkillSnapshot) (SkillSnapshot, error)
	RecordMarketFit(ctx context.Context, snap MarketFitSnapshot) (MarketFitSnapshot, error)
	ListSkills(ctx context.Context, seekerID string) ([]SkillSnapshot, error)
	ListMarketFit(ctx context.Context, seekerID string) ([]MarketFitSnapshot, error)
	// LatestMarketFit returns the newest market-fit row for (seeker, role).
	LatestMarketFit(ctx context.Context, seekerID, role string) (MarketFitSnapshot, bool, error)
}

// MemoryRecorder is the in-process Recorder used by default and in tests.
type MemoryRecorder struct {
	mu        sync.RWMutex
	skills    map[string][]SkillSnapshot
	marketFit map[string][]MarketFitSnapshot
	now       func() time.Time
}

// NewMemoryRecorder builds an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		skills:    make(map[string][]SkillSnapshot),
		marketFit: make(map[string][]MarketFitSnapshot),
		now:       time.Now,
	}
}

// RecordSkills implements Recorder.
func (m *MemoryRecorder) RecordSkills(_ context.Context, snap SkillSnapshot) (SkillSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.ID = uuid.NewString()
	snap.CreatedAt = m.now().UTC()
	snap.Skills = append([]SkillScore{}, snap.Skills...)
	m.skills[snap.SeekerID] = append(m.skills[snap.SeekerID], snap)
	return snap, nil
}

// RecordMarketFit implements Recorder.
func (m *MemoryRecorder) RecordMarketFit(_ context.Context, snap MarketFitSnapshot) (MarketFitSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap.ID = uuid.NewString()
	snap.CreatedAt = m.now().UTC()
	snap.Have = append([]string{}, snap.Have...)
	snap.Missing = append([]string{}, snap.Missing...)
	snap.TopMarket = append([]string{}, snap.TopMarket...)
	m.marketFit[snap.SeekerID] = append(m.marketFit[snap.SeekerID], snap)
	return snap, nil
}

// ListSkills implements Recorder; rows come back oldest first.
func (m *MemoryRecorder) ListSkills(_ context.Context, seekerID string) ([]SkillSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SkillSnapshot{}, m.skills[seekerID]...), nil
}

// ListMarketFit implements Recorder; rows come back oldest first.
func (m *MemoryRecorder) ListMarketFit(_ context.Context, seekerID string) ([]MarketFitSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]MarketFitSnapshot{}, m.marketFit[seekerID]...), nil
}

// LatestMarketFit implements Recorder.
func (m *MemoryRecorder) LatestMarketFit(_ context.Context, seekerID, role string) (MarketFitSnapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.marketFit[seekerID]
	matching := make([]MarketFitSnapshot, 0, len(rows))
	for _, row := range rows {
		if row.Role == role {
			matching = append(matching, row)
		}
	}
	if len(matching) == 0 {
		return MarketFitSnapshot{}, false, nil
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].CreatedAt.Before(matching[j].CreatedAt)
	})
	return matching[len(matching)-1], true, nil
}
