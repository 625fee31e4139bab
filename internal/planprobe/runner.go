package planprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/practiceplan/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes the complete probe and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get()
	stats := &Stats{StartTime: time.Now()}

	if cfg.Seed == 0 {
		cfg.Seed = uint64(stats.StartTime.UnixNano())
	}
	log.Info(ctx, "starting plan probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Any("seed", cfg.Seed))

	client := NewHTTPClient(cfg.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, cfg, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate assessments
	probes := GenerateProbes(cfg.Requests, cfg.Seed)
	stats.Generated = len(probes)

	// Step 3: Submit concurrently
	if err := submitProbes(ctx, cfg, client, probes, stats); err != nil {
		return stats, fmt.Errorf("probe submission failed: %w", err)
	}

	// Step 4: Save assessments
	if cfg.OutputFile != "" {
		if err := saveProbes(cfg.OutputFile, probes); err != nil {
			log.Warn(ctx, "failed to save probes", logger.Error(err))
		} else {
			log.Info(ctx, "probes saved to file", logger.String("filename", cfg.OutputFile))
		}
	}

	// Step 5: Verify
	verifyErr := verifyResults(probes, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	log.Info(ctx, "probe completed successfully")
	return stats, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// checkServiceHealth verifies the service reports ok.
func checkServiceHealth(ctx context.Context, cfg *Config, client *HTTPClient) error {
	resp, err := client.Get(ctx, strings.TrimRight(cfg.BaseURL, "/")+"/health")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", body.Status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveProbes writes the submitted assessments as a JSON array.
func saveProbes(filename string, probes []Probe) error {
	if len(probes) == 0 {
		return fmt.Errorf("no probes to save")
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(probes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal probes: %w", err)
	}
	if err := os.WriteFile(filename, append(data, '\n'), filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Plans) / float64(stats.Submitted) * 100
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("plans", stats.Plans),
		logger.Int("upstreamFailures", stats.UpstreamFailures),
		logger.Int("invalid", stats.Invalid),
		logger.Int("formatWarnings", stats.FormatWarnings),
		logger.String("duration", stats.Duration.String()),
		logger.String("maxLatency", stats.MaxLatency.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", perSecond))
}
