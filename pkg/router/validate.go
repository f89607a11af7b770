package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/zen-systems/skillroute/pkg/skill"
)

// ValidationError describes why a classifier reply was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err came from reply validation rather
// than from the adapter call.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// classifierReply is the only accepted reply shape.
type classifierReply struct {
	Skills     []string `json:"skills"`
	Confidence float64  `json:"confidence"`
	Notes      string   `json:"notes"`
}

// Pick is a validated classifier reply.
type Pick struct {
	Skills     []skill.Name
	Confidence float64
	Notes      string
}

var replySchema = mustCompileReplySchema()

func mustCompileReplySchema() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(replySchemaJSON()))
	if err != nil {
		panic(fmt.Sprintf("router: compile reply schema: %v", err))
	}
	return schema
}

// replySchemaJSON builds the JSON schema for a classifier reply from the
// selectable enumeration.
func replySchemaJSON() string {
	enum, _ := json.Marshal(selectableStrings())
	return fmt.Sprintf(`{
  "type": "object",
  "additionalProperties": false,
  "required": ["skills", "confidence", "notes"],
  "properties": {
    "skills": {
      "type": "array",
      "uniqueItems": true,
      "items": {"type": "string", "enum": %s}
    },
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "notes": {"type": "string"}
  }
}`, enum)
}

func selectableStrings() []string {
	names := skill.Selectable()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}

// duplicateKey walks the top-level object and reports the first key that
// appears twice. Unmarshal would otherwise keep the last value silently.
// content must already be known to hold a JSON object.
func duplicateKey(content string) (string, bool) {
	dec := json.NewDecoder(strings.NewReader(content))
	if _, err := dec.Token(); err != nil {
		return "", false
	}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		key, ok := tok.(string)
		if !ok {
			return "", false
		}
		if seen[key] {
			return key, true
		}
		seen[key] = true
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", false
		}
	}
	return "", false
}

// ValidateReply parses raw model output and accepts it only if it is a
// single JSON object with exactly skills, confidence and notes, every skill
// is selectable and unique, and confidence lies in [0,1].
func ValidateReply(raw string) (*Pick, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return nil, invalid("output is empty")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, invalid("output is not a single JSON object: %v", err)
	}
	if fields == nil {
		return nil, invalid("JSON root must be an object")
	}
	if key, dup := duplicateKey(content); dup {
		return nil, invalid("duplicate key %q", key)
	}

	result, err := replySchema.Validate(gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, invalid("output is not valid JSON: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, invalid("schema violation: %s", strings.Join(msgs, "; "))
	}

	var reply classifierReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, invalid("output does not decode: %v", err)
	}

	pick := &Pick{
		Skills:     make([]skill.Name, 0, len(reply.Skills)),
		Confidence: reply.Confidence,
		Notes:      reply.Notes,
	}
	seen := make(map[skill.Name]bool, len(reply.Skills))
	for _, s := range reply.Skills {
		name, ok := skill.Parse(s)
		if !ok {
			return nil, invalid("unknown skill %q", s)
		}
		if seen[name] {
			return nil, invalid("duplicate skill %q", s)
		}
		seen[name] = true
		pick.Skills = append(pick.Skills, name)
	}
	if pick.Confidence < 0 || pick.Confidence > 1 {
		return nil, invalid("confidence %v outside [0,1]", pick.Confidence)
	}

	return pick, nil
}
