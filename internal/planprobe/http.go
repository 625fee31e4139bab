package planprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/practiceplan/pkg/logger"
)

// requestIDHeader is echoed by the service on every response.
const requestIDHeader = "X-Request-ID"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 4 << 20

// HTTPClient wraps http.Client with the probe's timeout.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a new HTTP client with timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url, requestID string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}
	return c.client.Do(req)
}

// submitProbes posts every probe with at most cfg.Workers in flight. Results
// are stored on each probe; only context cancellation aborts the run.
func submitProbes(ctx context.Context, cfg *Config, client *HTTPClient, probes []Probe, stats *Stats) error {
	log := logger.Get()
	url := strings.TrimRight(cfg.BaseURL, "/") + "/api/generate-plan"

	var submitted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for i := range probes {
		p := &probes[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.Result = submitProbe(gctx, client, url, p)
			n := submitted.Add(1)
			if cfg.Verbose {
				log.Info(gctx, "probe response",
					logger.String("id", p.ID),
					logger.String("profile", p.Profile),
					logger.Int("status", p.Result.StatusCode),
					logger.Int("planBytes", len(p.Result.Plan)),
					logger.String("latency", p.Result.Latency.String()),
					logger.Any("submitted", n))
			}
			return nil
		})
	}
	err := g.Wait()
	stats.Submitted = int(submitted.Load())
	return err
}

// submitProbe submits a single probe and decodes the response.
func submitProbe(ctx context.Context, client *HTTPClient, url string, p *Probe) Result {
	start := time.Now()
	resp, err := client.Post(ctx, url, p.ID, p.Payload)
	if err != nil {
		return Result{Err: err, Latency: time.Since(start)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	res := Result{StatusCode: resp.StatusCode, Latency: time.Since(start)}
	if err != nil {
		res.Err = err
		return res
	}
	var body PlanResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		res.Err = fmt.Errorf("decode response: %w", err)
		return res
	}
	res.Plan = body.Plan
	res.Error = body.Error
	return res
}
