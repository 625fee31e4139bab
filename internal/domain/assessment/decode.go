package assessment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode reads a payload from r. An empty body yields an empty payload; any
// data after the first JSON value is rejected.
func Decode(r io.Reader) (Payload, error) {
	var p Payload
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		if !errors.Is(err, io.EOF) {
			return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		p.Normalize()
		return p, nil
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after assessment")
		}
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	p.Normalize()
	return p, nil
}
