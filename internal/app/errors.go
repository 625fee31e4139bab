package service

import "errors"

// Sentinel errors for the service lifecycle.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrNoCurriculum = errors.New("curriculum not configured")
	ErrNoGenerator  = errors.New("generator not configured")
)
