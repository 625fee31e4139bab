// Package plan turns a scored assessment into a practice plan by prompting a
// text-generation collaborator.
package plan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/practiceplan/internal/domain/assessment"
	"github.com/okian/practiceplan/internal/domain/catalog"
	"github.com/okian/practiceplan/internal/domain/curriculum"
	"github.com/okian/practiceplan/internal/domain/prompt"
)

// Generator produces text from a system prompt and a single user message.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// Request is a fully prepared generation call.
type Request struct {
	Summary assessment.Summary
	System  string
	User    string
}

// Planner builds prompts and calls the Generator. It is safe for concurrent
// use.
type Planner struct {
	gen     Generator
	catalog string
}

// New returns a Planner. The curriculum catalogue is rendered once here since
// the provider is read-only.
func New(gen Generator, songs curriculum.Provider) (*Planner, error) {
	if gen == nil {
		return nil, ErrNoGenerator
	}
	if songs == nil {
		return nil, ErrNoCurriculum
	}
	return &Planner{gen: gen, catalog: catalog.Build(songs)}, nil
}

// Catalog returns the rendered curriculum.
func (p *Planner) Catalog() string {
	return p.catalog
}

// Prepare scores the payload and renders both prompts.
func (p *Planner) Prepare(payload assessment.Payload) (Request, error) {
	payload.Normalize()
	summary := assessment.Score(payload)

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return Request{}, fmt.Errorf("encode assessment: %w", err)
	}

	user, err := prompt.User(prompt.UserData{
		Percentage: summary.Percentage(),
		WeakAreas:  summary.TopWeakAreas(prompt.MaxWeakAreas),
		Struggles:  payload.Struggles,
		Assessment: string(raw),
		Catalog:    p.catalog,
	})
	if err != nil {
		return Request{}, err
	}

	return Request{Summary: summary, System: prompt.System(), User: user}, nil
}

// Complete sends a prepared request and cleans the reply.
func (p *Planner) Complete(ctx context.Context, req Request) (string, error) {
	text, err := p.gen.Generate(ctx, req.System, req.User)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	return Clean(text), nil
}

// Generate prepares and completes a plan for payload.
func (p *Planner) Generate(ctx context.Context, payload assessment.Payload) (string, error) {
	req, err := p.Prepare(payload)
	if err != nil {
		return "", err
	}
	return p.Complete(ctx, req)
}
