// Package llm wraps the model providers behind one client interface. The
// Gemini client dispatches tool calls natively; the REST providers return
// text that the orchestrator parses as a JSON envelope.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one prior conversation turn passed back to the model.
type Message struct {
	Role Role
	Text string
}

// ToolDecl declares one callable function to the model.
type ToolDecl struct {
	Name        string
	Description string
	Parameters  *Schema
}

// Request is a single generation call: bounded history plus the composed
// prompt, with the tool catalogue for providers that dispatch natively.
type Request struct {
	System  string
	History []Message
	Prompt  string
	Tools   []ToolDecl
}

// ToolCall is one function invocation named by the model.
type ToolCall struct {
	Name string
	Args json.RawMessage
}

// Result carries the model's free text and any tool calls, in that order of
// interpretation: callers act on Calls first, then fall back to Text.
type Result struct {
	Text  string
	Calls []ToolCall
}

type Client interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Result, error)
	Close() error
}

type toolNativer interface {
	NativeTools() bool
}

// NativeTools reports whether the provider dispatches tool calls itself.
// Non-native providers need the tool catalogue spelled out in the prompt.
func NativeTools(c Client) bool {
	if t, ok := c.(toolNativer); ok {
		return t.NativeTools()
	}
	return false
}

// IsModelNotFound matches the one provider failure documented as
// recoverable: a wrong model identifier, answered with a single retry
// against the default model.
func IsModelNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "404") || strings.Contains(msg, "NOT_FOUND")
}
