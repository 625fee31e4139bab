package planprobe

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/practiceplan/internal/domain/assessment"
)

// Skill names per group, matching the landing page form.
var skillNames = map[string][]string{
	assessment.GroupScales:     {"majorScale", "minorPentatonic", "majorPentatonic", "bluesScale", "modes"},
	assessment.GroupTriads:     {"majorTriads", "minorTriads", "triadInversions"},
	assessment.GroupChords:     {"openChords", "barreChords", "seventhChords", "chordChanges"},
	assessment.GroupArpeggios:  {"majorArpeggios", "minorArpeggios", "seventhArpeggios"},
	assessment.GroupNavigation: {"noteNames", "cagedSystem", "intervals"},
	assessment.GroupTechnique:  {"alternatePicking", "legato", "bending", "vibrato", "strumming"},
}

var struggleSamples = []string{
	"clean chord changes",
	"keeping time with a metronome",
	"muting unwanted strings",
	"soloing outside one pentatonic box",
	"picking speed",
	"remembering songs",
}

// Score ranges per profile, inclusive.
var profiles = []struct {
	name     string
	min, max int
}{
	{"beginner", 1, 2},
	{"developing", 1, 3},
	{"intermediate", 2, 4},
	{"advanced", 3, 5},
	{"mixed", 1, 5},
	{"empty", 0, 0},
}

// GenerateProbes builds n assessments with a deterministic spread of profiles
// for the given seed.
func GenerateProbes(n int, seed uint64) []Probe {
	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Probe, n)
	for i := range out {
		p := profiles[i%len(profiles)]
		out[i] = Probe{
			ID:      uuid.NewString(),
			Profile: p.name,
			Payload: generatePayload(rnd, p.min, p.max),
		}
	}
	return out
}

func generatePayload(rnd *rand.Rand, lo, hi int) assessment.Payload {
	var p assessment.Payload
	p.Normalize()
	if hi == 0 {
		return p
	}

	group := func(name string) assessment.ScoreGroup {
		var g assessment.ScoreGroup
		for _, skill := range skillNames[name] {
			g = g.Set(skill, float64(lo+rnd.IntN(hi-lo+1)))
		}
		return g
	}
	p.Scales = group(assessment.GroupScales)
	p.Triads = group(assessment.GroupTriads)
	p.Chords = group(assessment.GroupChords)
	p.Arpeggios = group(assessment.GroupArpeggios)
	p.Navigation = group(assessment.GroupNavigation)
	p.Technique = group(assessment.GroupTechnique)

	for _, s := range struggleSamples {
		if rnd.IntN(3) == 0 {
			p.Struggles = append(p.Struggles, s)
		}
	}
	return p
}
