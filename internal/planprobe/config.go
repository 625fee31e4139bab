// Package planprobe exercises a running practice plan service end to end.
package planprobe

import (
	"time"

	"github.com/okian/practiceplan/internal/domain/assessment"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of assessments to submit
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // Per-request HTTP timeout
	Seed       uint64        // Seed for assessment generation; zero picks one
	OutputFile string        // Where to save the submitted assessments; empty disables
	Verbose    bool          // Log every response
}

// Probe is one generated assessment and its submission result.
type Probe struct {
	ID      string             `json:"id"`
	Profile string             `json:"profile"`
	Payload assessment.Payload `json:"payload"`

	Result Result `json:"-"`
}

// Result is the outcome of submitting one probe.
type Result struct {
	StatusCode int
	Plan       string
	Error      string
	Latency    time.Duration
	Err        error
}

// PlanResponse mirrors the service's success and error bodies.
type PlanResponse struct {
	Plan  string `json:"plan,omitempty"`
	Error string `json:"error,omitempty"`
}

// Stats holds probe statistics.
type Stats struct {
	Generated        int
	Submitted        int
	Plans            int
	UpstreamFailures int
	Invalid          int
	FormatWarnings   int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	MaxLatency       time.Duration
}
