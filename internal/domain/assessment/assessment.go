// Package assessment scores a guitar-skills self-assessment.
package assessment

import (
	"math"
)

// WeakThreshold is the highest score still counted as a weak area.
const WeakThreshold = 2

// MaxScore is the top of the self-assessment scale.
const MaxScore = 5

// Group names in merge order.
const (
	GroupScales     = "scales"
	GroupTriads     = "triads"
	GroupChords     = "chords"
	GroupArpeggios  = "arpeggios"
	GroupNavigation = "navigation"
	GroupTechnique  = "technique"
)

// Payload is a submitted self-assessment. Missing groups decode as empty.
type Payload struct {
	Scales     ScoreGroup `json:"scales"`
	Triads     ScoreGroup `json:"triads"`
	Chords     ScoreGroup `json:"chords"`
	Arpeggios  ScoreGroup `json:"arpeggios"`
	Navigation ScoreGroup `json:"navigation"`
	Technique  ScoreGroup `json:"technique"`
	Struggles  []string   `json:"struggles"`
}

// Normalize replaces absent containers with empty ones.
func (p *Payload) Normalize() {
	for _, g := range []*ScoreGroup{&p.Scales, &p.Triads, &p.Chords, &p.Arpeggios, &p.Navigation, &p.Technique} {
		if *g == nil {
			*g = ScoreGroup{}
		}
	}
	if p.Struggles == nil {
		p.Struggles = []string{}
	}
}

// Groups returns the score groups in merge order.
func (p Payload) Groups() []ScoreGroup {
	return []ScoreGroup{p.Scales, p.Triads, p.Chords, p.Arpeggios, p.Navigation, p.Technique}
}

// Merge flattens every group into one mapping. A name seen in more than one
// group keeps its first position and takes the last value.
func Merge(p Payload) ScoreGroup {
	var out ScoreGroup
	for _, g := range p.Groups() {
		for _, s := range g {
			out = out.Set(s.Name, s.Value)
		}
	}
	return out
}

// Summary is the scored view of a payload.
type Summary struct {
	AverageScore float64  `json:"averageScore"`
	WeakAreas    []string `json:"weakAreas"`
}

// Score computes the average and the weak areas of a payload.
func Score(p Payload) Summary {
	merged := Merge(p)
	sum := Summary{WeakAreas: []string{}}
	if len(merged) == 0 {
		return sum
	}

	var total float64
	for _, s := range merged {
		total += s.Value
		if s.Value <= WeakThreshold {
			sum.WeakAreas = append(sum.WeakAreas, s.Name)
		}
	}
	sum.AverageScore = total / float64(len(merged))
	return sum
}

// TopWeakAreas returns at most n weak areas.
func (s Summary) TopWeakAreas(n int) []string {
	if n < 0 {
		n = 0
	}
	if len(s.WeakAreas) <= n {
		return s.WeakAreas
	}
	return s.WeakAreas[:n]
}

// Percentage is the average expressed against MaxScore, rounded.
func (s Summary) Percentage() int {
	return int(math.Round(s.AverageScore / MaxScore * 100))
}
