package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Skill is one named score.
type Skill struct {
	Name  string
	Value float64
}

// ScoreGroup is a skill-name to score mapping that keeps the order in which
// names were first seen.
type ScoreGroup []Skill

// Set assigns value to name, appending the name when it is new.
func (g ScoreGroup) Set(name string, value float64) ScoreGroup {
	for i := range g {
		if g[i].Name == name {
			g[i].Value = value
			return g
		}
	}
	return append(g, Skill{Name: name, Value: value})
}

// Get returns the score stored under name.
func (g ScoreGroup) Get(name string) (float64, bool) {
	for _, s := range g {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// Names returns the skill names in order.
func (g ScoreGroup) Names() []string {
	out := make([]string, len(g))
	for i, s := range g {
		out[i] = s.Name
	}
	return out
}

// UnmarshalJSON decodes a JSON object preserving key order. Values that are
// not numbers are skipped.
func (g *ScoreGroup) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*g = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: score group must be an object", ErrInvalidPayload)
	}

	out := ScoreGroup{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected key %v", ErrInvalidPayload, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v float64
		if bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &v) != nil {
			continue
		}
		out = out.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = out
	return nil
}

// MarshalJSON encodes the group as a JSON object in stored order.
func (g ScoreGroup) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(s.Value, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
