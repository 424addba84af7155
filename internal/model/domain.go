package model

import (
	"encoding/json"
	"time"
)

// OptionalString is a JSON field that may be absent, a string, or some other
// JSON value. A JSON null is treated as absent.
type OptionalString struct {
	Present  bool
	IsString bool
	Value    string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = OptionalString{}
		return nil
	}

	*o = OptionalString{Present: true}
	if len(data) > 0 && data[0] == '"' {
		o.IsString = true
		return json.Unmarshal(data, &o.Value)
	}
	return nil
}

// Submission is the untrusted body of POST /exchange.
// Pixels stays raw so the validator can tell "not an array" apart from
// "wrong element type".
type Submission struct {
	Title  OptionalString  `json:"title"`
	Pixels json.RawMessage `json:"pixels"`
}

// UnmarshalJSON only accepts the exact keys "title" and "pixels". A repeated
// key keeps its last value.
func (s *Submission) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*s = Submission{}
	if raw, ok := fields["title"]; ok {
		if err := s.Title.UnmarshalJSON(raw); err != nil {
			return err
		}
	}
	if raw, ok := fields["pixels"]; ok {
		s.Pixels = raw
	}
	return nil
}

// ValidSubmission is only ever produced by a successful validation.
type ValidSubmission struct {
	Title  string
	Pixels []string
}

// Post is a paired submission as stored by the upstream.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Pixels    string    `json:"pixels"`
	CreatedAt time.Time `json:"created_at"`
}

type RateLimitDecision struct {
	Success bool
}
