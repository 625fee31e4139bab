package planprobe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/practiceplan/pkg/logger"
)

// Default flag values.
const (
	defaultRequests = 12
	defaultTimeout  = 3 * time.Minute
	defaultDeadline = 30 * time.Minute
)

// NewRootCommand returns the plan-probe command.
func NewRootCommand() *cobra.Command {
	cfg := &Config{}
	var (
		logFormat string
		deadline  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "plan-probe",
		Short: "Submit generated assessments to a running practice plan service",
		Long: `plan-probe checks /health, then posts generated self-assessments to
/api/generate-plan with a bounded number of concurrent workers and verifies
that every response carries either a plan or an error message.`,
		Example: `  plan-probe --url http://localhost:8080 --requests 20 --workers 4
  plan-probe --seed 42 --output probes.json --verbose`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Requests <= 0 {
				return fmt.Errorf("--requests must be positive")
			}
			if err := logger.InitWithWriter(cmd.ErrOrStderr(), logFormat); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if cfg.Verbose {
				return logger.SetLevelString("debug")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), deadline)
			defer cancel()

			stats, err := Run(ctx, cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "submitted=%d plans=%d upstream_failures=%d invalid=%d format_warnings=%d duration=%s\n",
					stats.Submitted, stats.Plans, stats.UpstreamFailures, stats.Invalid, stats.FormatWarnings, stats.Duration.Round(time.Millisecond))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "Base URL of the service")
	f.IntVar(&cfg.Requests, "requests", defaultRequests, "Number of assessments to submit")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "Per-request HTTP timeout")
	f.DurationVar(&deadline, "deadline", defaultDeadline, "Overall deadline for the run")
	f.Uint64Var(&cfg.Seed, "seed", 0, "Seed for assessment generation (0 picks one)")
	f.StringVar(&cfg.OutputFile, "output", "", "Write submitted assessments to this JSON file")
	f.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every response")
	return cmd
}
