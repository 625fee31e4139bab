// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/practiceplan/internal/domain/assessment"
	"github.com/okian/practiceplan/internal/domain/curriculum"
	"github.com/okian/practiceplan/internal/domain/plan"
	"github.com/okian/practiceplan/pkg/logger"
	"github.com/okian/practiceplan/pkg/metrics"
)

// Service implements the API dependencies for plan generation.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	songs     curriculum.Provider
	generator plan.Generator
	planner   *plan.Planner

	// Configuration
	model string

	// State
	started   bool
	startedAt time.Time
	plans     atomic.Int64
	failures  atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCurriculum sets the read-only song provider.
func WithCurriculum(p curriculum.Provider) Option {
	return func(s *Service) {
		s.songs = p
	}
}

// WithGenerator sets the text-generation collaborator.
func WithGenerator(g plan.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithModel records the collaborator model name for stats.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the planner and publishes curriculum metrics.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	switch {
	case s.songs == nil:
		return ErrNoCurriculum
	case s.generator == nil:
		return ErrNoGenerator
	}

	p, err := plan.New(s.generator, s.songs)
	if err != nil {
		return err
	}
	s.planner = p

	songs := s.songs.Songs()
	for tier, n := range curriculum.CountByTier(songs) {
		metrics.UpdateCurriculumSongs(tier, n)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "practice plan service started",
		logger.Int("songs", len(songs)),
		logger.Int("catalogBytes", len(p.Catalog())),
		logger.String("model", s.model),
	)
	return nil
}

// Stop marks the service as stopped. In-flight requests finish normally.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "practice plan service stopped",
		logger.Any("plans", s.plans.Load()),
		logger.Any("failures", s.failures.Load()),
	)
}

func (s *Service) currentPlanner() (*plan.Planner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.planner, nil
}

// GeneratePlan scores the assessment, calls the collaborator and returns the
// cleaned plan.
func (s *Service) GeneratePlan(ctx context.Context, payload assessment.Payload) (string, error) {
	planner, err := s.currentPlanner()
	if err != nil {
		return "", err
	}

	req, err := planner.Prepare(payload)
	if err != nil {
		s.failures.Add(1)
		s.logger.Error(ctx, "failed to prepare prompts", logger.Error(err))
		return "", err
	}
	metrics.RecordAssessment(req.Summary.AverageScore, len(req.Summary.WeakAreas))
	metrics.RecordPromptBytes("system", len(req.System))
	metrics.RecordPromptBytes("user", len(req.User))
	s.logger.Debug(ctx, "generating practice plan",
		logger.Float64("averageScore", req.Summary.AverageScore),
		logger.Int("weakAreas", len(req.Summary.WeakAreas)),
		logger.Int("systemBytes", len(req.System)),
		logger.Int("userBytes", len(req.User)),
	)

	out, err := planner.Complete(ctx, req)
	if err != nil {
		s.failures.Add(1)
		s.logger.Debug(ctx, "practice plan generation failed", logger.Error(err))
		return "", err
	}

	s.plans.Add(1)
	metrics.RecordPlanGenerated(len(out))
	s.logger.Info(ctx, "practice plan generated", logger.Int("planBytes", len(out)))
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":            s.started,
		"model":              s.model,
		"plansGenerated":     s.plans.Load(),
		"generationFailures": s.failures.Load(),
	}
	if s.songs != nil {
		songs := s.songs.Songs()
		stats["totalSongs"] = len(songs)
		stats["songsByTier"] = curriculum.CountByTier(songs)
	}
	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
	}
	return stats
}
