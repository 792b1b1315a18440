package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/guilhermegouw/bioexplorer/internal/message"
)

// collectionSchema is the structural contract for the persisted collection.
const collectionSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "messages", "createdAt"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "createdAt": {"type": "string", "format": "date-time"},
      "userTitled": {"type": "boolean"},
      "messages": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["id", "role", "content"],
          "properties": {
            "id": {"type": "string", "minLength": 1},
            "role": {"enum": ["user", "assistant"]},
            "content": {"type": "string"}
          }
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(collectionSchema))
	})
	return schema, schemaErr
}

// record is the persisted shape of a session.
type record struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Messages   []message.Message `json:"messages"`
	CreatedAt  time.Time         `json:"createdAt"`
	UserTitled bool              `json:"userTitled,omitempty"`
}

// CorruptError reports a persisted collection that failed validation.
// The record has been discarded; it is a diagnostic, not a failure.
type CorruptError struct {
	Reasons []string
}

func (e *CorruptError) Error() string {
	return "corrupt session data discarded: " + strings.Join(e.Reasons, "; ")
}

// Encode serializes sessions in collection order. It refuses messages that
// Decode would reject, so a save never produces a record Load discards.
func Encode(sessions []*Session) ([]byte, error) {
	records := make([]record, len(sessions))
	for i, s := range sessions {
		msgs := s.Messages
		if msgs == nil {
			msgs = []message.Message{}
		}
		for _, m := range msgs {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("encoding session %s: %w", s.ID, err)
			}
		}
		records[i] = record{
			ID:         s.ID,
			Title:      s.Title,
			Messages:   msgs,
			CreatedAt:  s.CreatedAt,
			UserTitled: s.TitleState == UserTitled,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling sessions: %w", err)
	}
	return data, nil
}

// Decode parses and validates a persisted collection.
// Any structural problem yields a *CorruptError and no sessions.
func Decode(data []byte) ([]*Session, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling session schema: %w", err)
	}

	result, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &CorruptError{Reasons: []string{err.Error()}}
	}
	if !result.Valid() {
		reasons := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			reasons = append(reasons, re.String())
		}
		return nil, &CorruptError{Reasons: reasons}
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptError{Reasons: []string{err.Error()}}
	}

	sessions := make([]*Session, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return nil, &CorruptError{Reasons: []string{fmt.Sprintf("duplicate session id %s", r.ID)}}
		}
		seen[r.ID] = true

		msgIDs := make(map[string]bool, len(r.Messages))
		for _, m := range r.Messages {
			if msgIDs[m.ID] {
				return nil, &CorruptError{Reasons: []string{fmt.Sprintf("duplicate message id %s in session %s", m.ID, r.ID)}}
			}
			msgIDs[m.ID] = true
		}

		sessions = append(sessions, fromRecord(r))
	}
	return sessions, nil
}

func fromRecord(r record) *Session {
	state := AutoTitled
	switch {
	case r.UserTitled:
		state = UserTitled
	case r.Title == UntitledTitle:
		state = Untitled
	}

	msgs := r.Messages
	if msgs == nil {
		msgs = []message.Message{}
	}

	return &Session{
		ID:         r.ID,
		Title:      r.Title,
		TitleState: state,
		Messages:   msgs,
		CreatedAt:  r.CreatedAt,
	}
}
