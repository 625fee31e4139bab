package planprobe

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Expected recommendation count in a well-formed plan.
const (
	minRecommendations = 5
	maxRecommendations = 7
)

// ErrInvalidResponses is returned when any response breaks the API contract.
var ErrInvalidResponses = errors.New("invalid responses")

// Verdict classifies one result.
type Verdict int

// Result classifications.
const (
	VerdictPlan Verdict = iota
	VerdictUpstreamFailure
	VerdictInvalid
)

// Classify checks a result against the API contract: a 200 carries a plan,
// possibly empty when the collaborator sent no text, and a 500 must carry an
// error message.
func Classify(r Result) Verdict {
	switch {
	case r.Err != nil:
		return VerdictInvalid
	case r.StatusCode == http.StatusOK:
		return VerdictPlan
	case r.StatusCode == http.StatusInternalServerError && strings.TrimSpace(r.Error) != "":
		return VerdictUpstreamFailure
	default:
		return VerdictInvalid
	}
}

// Recommendations counts song-recommendation wrappers in a plan.
func Recommendations(plan string) int {
	return strings.Count(plan, `class="song-recommendation"`)
}

// HasFence reports whether a plan still carries a markdown code fence at
// either end.
func HasFence(plan string) bool {
	p := strings.TrimSpace(plan)
	return strings.HasPrefix(p, "```") || strings.HasSuffix(p, "```")
}

// verifyResults tallies probe results into stats and fails when any response
// broke the contract.
func verifyResults(probes []Probe, stats *Stats) error {
	for _, p := range probes {
		if p.Result.Latency > stats.MaxLatency {
			stats.MaxLatency = p.Result.Latency
		}
		switch Classify(p.Result) {
		case VerdictPlan:
			stats.Plans++
			n := Recommendations(p.Result.Plan)
			if strings.TrimSpace(p.Result.Plan) == "" || n < minRecommendations || n > maxRecommendations || HasFence(p.Result.Plan) {
				stats.FormatWarnings++
			}
		case VerdictUpstreamFailure:
			stats.UpstreamFailures++
		default:
			stats.Invalid++
		}
	}
	if stats.Invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidResponses, stats.Invalid, len(probes))
	}
	return nil
}
