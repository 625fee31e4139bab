// Package curriculum holds the read-only song curriculum and tier filtering.
package curriculum

import (
	"strings"
)

// Difficulty tiers in teaching order.
const (
	TierFoundation = "Foundation"
	TierDeveloping = "Developing"
	TierCompetent  = "Competent"
	TierAdvanced   = "Advanced"
	TierMaster     = "Master"
)

// Tiers lists every recognised tier in teaching order.
var Tiers = []string{TierFoundation, TierDeveloping, TierCompetent, TierAdvanced, TierMaster}

// Song is one curriculum entry.
type Song struct {
	Title                  string `json:"title" yaml:"title"`
	Artist                 string `json:"artist" yaml:"artist"`
	DifficultyLevel        string `json:"difficultyLevel" yaml:"difficultyLevel"`
	SkillCategory          string `json:"skillCategory,omitempty" yaml:"skillCategory,omitempty"`
	SecondarySkillCategory string `json:"secondarySkillCategory,omitempty" yaml:"secondarySkillCategory,omitempty"`
	ExistingMasterclass    string `json:"existingMasterclass,omitempty" yaml:"existingMasterclass,omitempty"`
	PotentialMasterclass   string `json:"potentialMasterclass,omitempty" yaml:"potentialMasterclass,omitempty"`
}

// Tier returns the non-numeric prefix of the difficulty level, e.g.
// "Competent" for "Competent 2".
func (s Song) Tier() string {
	level := strings.TrimSpace(s.DifficultyLevel)
	end := strings.IndexFunc(level, func(r rune) bool { return r >= '0' && r <= '9' })
	if end < 0 {
		return level
	}
	return strings.TrimSpace(level[:end])
}

// Provider exposes the curriculum to request handlers.
type Provider interface {
	// Songs returns the curriculum in its original order. Callers must not
	// modify the returned slice.
	Songs() []Song
}

// Store is an immutable Provider.
type Store struct {
	songs []Song
}

// NewStore returns a Store holding a copy of songs.
func NewStore(songs []Song) *Store {
	cp := make([]Song, len(songs))
	copy(cp, songs)
	return &Store{songs: cp}
}

// Songs implements Provider.
func (s *Store) Songs() []Song {
	return s.songs
}

// Len returns the number of songs in the store.
func (s *Store) Len() int {
	return len(s.songs)
}

// FilterByTier returns the songs whose difficulty level starts with tier,
// preserving order. The match is a literal string prefix: "Competent" also
// matches a level such as "Competentx".
func FilterByTier(songs []Song, tier string) []Song {
	var out []Song
	for _, s := range songs {
		if strings.HasPrefix(s.DifficultyLevel, tier) {
			out = append(out, s)
		}
	}
	return out
}

// CountByTier returns the number of songs per recognised tier using the
// same prefix match as FilterByTier.
func CountByTier(songs []Song) map[string]int {
	counts := make(map[string]int, len(Tiers))
	for _, tier := range Tiers {
		counts[tier] = len(FilterByTier(songs, tier))
	}
	return counts
}

// IsTier reports whether name is a recognised tier.
func IsTier(name string) bool {
	for _, t := range Tiers {
		if t == name {
			return true
		}
	}
	return false
}
