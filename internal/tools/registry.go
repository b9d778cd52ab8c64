// Package tools is the fixed catalogue of widget-producing operations the
// model may invoke. Each tool turns model-supplied arguments plus the
// session context into one or more validated widget records.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

var ErrUnknownTool = errors.New("tools: unknown tool")

// ToolSpec documents a tool's contract: its name and argument schema.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  *llm.Schema
}

// Tool is one registered widget builder. Build must treat args as
// untrusted input from the model.
type Tool interface {
	Spec() ToolSpec
	Build(ctx context.Context, args json.RawMessage, sess *Session) ([]widget.Widget, error)
}

// BuildError carries one of the fixed error codes for failures the caller
// turns into an error widget rather than a server error.
type BuildError struct {
	Code    string
	Message string
}

func (e *BuildError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Registry holds tool registrations and dispatches builds by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool by name.
func (r *Registry) Register(t Tool) {
	if r == nil || t == nil {
		return
	}
	spec := t.Spec()
	if spec.Name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[spec.Name]; !exists {
		r.order = append(r.order, spec.Name)
	}
	r.tools[spec.Name] = t
}

// Build invokes the named tool. An unregistered name yields ErrUnknownTool.
func (r *Registry) Build(ctx context.Context, name string, args json.RawMessage, sess *Session) ([]widget.Widget, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t.Build(ctx, args, sess)
}

// Specs returns the tool specs in registration order.
func (r *Registry) Specs() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Spec())
	}
	return out
}

// Declarations renders the specs as model-facing tool declarations.
func (r *Registry) Declarations() []llm.ToolDecl {
	specs := r.Specs()
	out := make([]llm.ToolDecl, 0, len(specs))
	for _, s := range specs {
		out = append(out, llm.ToolDecl{Name: s.Name, Description: s.Description, Parameters: s.Parameters})
	}
	return out
}

// RegisterDefaultTools installs the full widget tool set.
func RegisterDefaultTools(r *Registry) {
	if r == nil {
		return
	}
	r.Register(&chatReplyTool{})
	r.Register(&chartTool{})
	r.Register(&mapTool{})
	r.Register(&imageTool{})
	r.Register(&videoTool{})
	r.Register(&cameraTool{})
	r.Register(&analyzeDocumentTool{})
	r.Register(&weatherTool{})
}
