package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		canonical   []string
		seeker      []string
		wantPercent int
		wantMatched []string
		wantMissing []string
	}{
		{
			name:        "empty canonical yields zero",
			canonical:   nil,
			seeker:      []string{"Python"},
			wantPercent: 0,
			wantMatched: []string{},
			wantMissing: []string{},
		},
		{
			name:        "no overlap",
			canonical:   []string{"Go", "SQL"},
			seeker:      []string{"Photoshop"},
			wantPercent: 0,
			wantMatched: []string{},
			wantMissing: []string{"go", "sql"},
		},
		{
			name:        "full coverage",
			canonical:   []string{"Python", "SQL"},
			seeker:      []string{"питон", "sql", "docker"},
			wantPercent: 100,
			wantMatched: []string{"python", "sql"},
			wantMissing: []string{},
		},
		{
			name:        "one of three rounds to 33",
			canonical:   []string{"Python", "SQL", "Git"},
			seeker:      []string{"python", "docker"},
			wantPercent: 33,
			wantMatched: []string{"python"},
			wantMissing: []string{"git", "sql"},
		},
		{
			name:        "two of three rounds to 67",
			canonical:   []string{"Python", "SQL", "Git"},
			seeker:      []string{"python", "git"},
			wantPercent: 67,
			wantMatched: []string{"git", "python"},
			wantMissing: []string{"sql"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.canonical, BuildSet(tt.seeker))
			assert.Equal(t, tt.wantPercent, got.Percent)
			assert.Equal(t, tt.wantMatched, got.Matched)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

func TestMatchMonotonic(t *testing.T) {
	canonical := []string{"Python", "SQL", "Git", "Docker", "Linux"}
	seeker := []string{"python", "sql", "git", "docker", "linux"}

	prev := 0
	for i := 1; i <= len(seeker); i++ {
		got := Match(canonical, BuildSet(seeker[:i]))
		assert.GreaterOrEqual(t, got.Percent, prev, "adding a skill must not lower the percent")
		prev = got.Percent
	}
	assert.Equal(t, 100, prev)
}

func TestMatchSymmetricSameTokens(t *testing.T) {
	// Alias and case differences on either side collapse to the same tokens.
	a := Match([]string{"Питон", "SQL"}, BuildSet([]string{"python", "sql"}))
	b := Match([]string{"python", "sql"}, BuildSet([]string{"Питон", "SQL"}))
	assert.Equal(t, a.Percent, b.Percent)
	assert.Equal(t, 100, a.Percent)
}
