package agent

import (
	"encoding/json"

	"pulseboard/internal/jsonutil"
)

// Envelope is the structured reply shape requested from providers that do
// not dispatch tool calls natively: the model names a tool, its arguments,
// and an optional conversational reply.
type Envelope struct {
	Tool  string          `json:"tool"`
	Args  json.RawMessage `json:"args,omitempty"`
	Reply string          `json:"reply,omitempty"`
}

// ParseEnvelope attempts to read model text as an Envelope. Fenced JSON
// and double-encoded JSON both parse; anything else reports false and the
// caller treats the text as a plain conversational answer.
func ParseEnvelope(text string) (*Envelope, bool) {
	stripped := jsonutil.StripFences(text)
	if len(stripped) == 0 || (stripped[0] != '{' && stripped[0] != '"') {
		return nil, false
	}
	var env Envelope
	if err := jsonutil.UnmarshalFlex([]byte(stripped), &env); err != nil {
		return nil, false
	}
	if env.Tool == "" && env.Reply == "" {
		return nil, false
	}
	return &env, true
}
