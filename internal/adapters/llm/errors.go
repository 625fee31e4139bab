package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/practiceplan/pkg/metrics"
)

var (
	// ErrTransport indicates the request never produced an HTTP response.
	ErrTransport = errors.New("llm transport error")

	// ErrMalformedResponse indicates a 2xx body that could not be decoded.
	ErrMalformedResponse = errors.New("llm malformed response")

	// ErrMissingConfig indicates a required client setting is empty.
	ErrMissingConfig = errors.New("llm config missing")
)

// APIError is a non-2xx reply from the text-generation API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "unexpected status"
	}
	if e.Type != "" {
		return fmt.Sprintf("llm api error: status=%d type=%s message=%s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("llm api error: status=%d message=%s", e.StatusCode, msg)
}

func parseAPIError(status int, raw []byte) *APIError {
	var env struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Type = strings.TrimSpace(env.Error.Type)
		apiErr.Message = strings.TrimSpace(env.Error.Message)
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// Kind classifies err for the generation error metric.
func Kind(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.KindCanceled
	case errors.As(err, &apiErr):
		return metrics.KindAPI
	case errors.Is(err, ErrMalformedResponse):
		return metrics.KindMalformed
	case errors.Is(err, ErrTransport):
		return metrics.KindTransport
	default:
		return metrics.KindUnknown
	}
}
