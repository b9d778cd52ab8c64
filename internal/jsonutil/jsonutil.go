package jsonutil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// MarshalNoEscape encodes v into JSON without escaping <, >, & into <, etc.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Remove trailing newline from json.Encoder.Encode
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// StripFences removes markdown code-fence markers around a JSON block.
// Models frequently wrap JSON in ```json ... ``` even when asked not to.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// UnmarshalFlex tries to unmarshal JSON bytes into v with best effort:
// 1) Direct unmarshal
// 2) Unwrap a JSON-string-wrapped payload and unmarshal the inner document
// Helps when a model double-encodes its JSON response.
func UnmarshalFlex(raw []byte, v any) error {
	direct := json.Unmarshal(raw, v)
	if direct == nil {
		return nil
	}
	var inner string
	if err := json.Unmarshal(raw, &inner); err != nil {
		return direct
	}
	return json.Unmarshal([]byte(inner), v)
}
