// Package catalog renders the curriculum as a tier-grouped text block.
package catalog

import (
	"fmt"
	"strings"

	"github.com/okian/practiceplan/internal/domain/curriculum"
)

// Build renders every tier in teaching order, emitting the heading even for
// empty tiers.
func Build(p curriculum.Provider) string {
	songs := p.Songs()

	var b strings.Builder
	for i, tier := range curriculum.Tiers {
		if i > 0 {
			b.WriteByte('\n')
		}
		matched := curriculum.FilterByTier(songs, tier)
		fmt.Fprintf(&b, "## %s (%d songs)\n", tier, len(matched))
		for _, s := range matched {
			b.WriteString(Line(s))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Line renders a single song.
func Line(s curriculum.Song) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %q by %s [%s]", s.Title, s.Artist, s.DifficultyLevel)
	if s.SkillCategory != "" {
		b.WriteString(" - Skill: ")
		b.WriteString(s.SkillCategory)
		if s.SecondarySkillCategory != "" {
			b.WriteString(" / ")
			b.WriteString(s.SecondarySkillCategory)
		}
	}
	if s.ExistingMasterclass != "" {
		fmt.Fprintf(&b, " [COURSE: %s]", s.ExistingMasterclass)
	}
	if s.PotentialMasterclass != "" {
		fmt.Fprintf(&b, " [SUPPORTS: %s]", s.PotentialMasterclass)
	}
	return b.String()
}
