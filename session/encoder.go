package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Decode when a stored blob is not a Session.
var ErrCorrupt = errors.New("session blob corrupt")

// Encode renders s as the JSON text persisted by every store.
func Encode(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	out := s.Clone()
	if out.Roles == nil {
		out.Roles = []string{}
	}
	return json.Marshal(out)
}

// Decode parses a blob written by Encode. Anything that is not a JSON object is
// reported as ErrCorrupt.
func Decode(data []byte) (*Session, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrCorrupt
	}

	var s Session
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if s.Roles == nil {
		s.Roles = []string{}
	}
	return &s, nil
}
