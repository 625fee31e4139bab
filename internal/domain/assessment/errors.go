package assessment

import "errors"

// ErrInvalidPayload is returned when an assessment body cannot be decoded.
var ErrInvalidPayload = errors.New("invalid assessment payload")
