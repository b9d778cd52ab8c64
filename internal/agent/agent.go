// Package agent runs the command-to-widgets pipeline: ingest uploads,
// compose the prompt, invoke the model, interpret its reply, dispatch
// tools, and validate everything that crosses back to the client.
package agent

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"pulseboard/internal/document"
	"pulseboard/internal/history"
	"pulseboard/internal/llm"
	"pulseboard/internal/session"
	"pulseboard/internal/tools"
	"pulseboard/internal/widget"
)

// UploadedFile is one attachment carried on a widget request. Content is
// base64 when it arrives over the wire; the handler decodes before here.
type UploadedFile struct {
	Filename string
	MIMEType string
	Content  []byte
}

// Request is one natural-language command against a conversation.
type Request struct {
	ConversationID string
	Command        string
	Provider       string
	Files          []UploadedFile
}

// Response is the resolved widget set plus the model's conversational text.
type Response struct {
	Widgets []widget.Widget
	Reply   string
}

// Archiver persists raw uploads out of band. Failures are logged, never
// fatal to the request.
type Archiver interface {
	Put(ctx context.Context, conversationID, filename, contentType string, content []byte) error
}

// ClientResolver turns a provider name into a model client. llm.Catalog is
// the production implementation.
type ClientResolver interface {
	Resolve(ctx context.Context, provider string) (llm.Client, error)
	Fallback(ctx context.Context) (llm.Client, error)
}

// Agent wires the pipeline's collaborators together.
type Agent struct {
	Catalog ClientResolver
	History history.Store
	Docs    *session.DocStore
	Tools   *tools.Registry
	Weather tools.WeatherLookup
	Archive Archiver

	// Notify, when set, receives every resolved widget batch for the live
	// feed. Called after validation, before the response returns.
	Notify func(conversationID string, widgets []widget.Widget)
}

const fallbackModelText = "Widget generated"

// Resolve runs one command end to end. It always returns a renderable
// widget set; pipeline failures come back as error widgets, not Go errors.
// The only error returns are context cancellation and history-store I/O.
func (a *Agent) Resolve(ctx context.Context, req Request) (*Response, error) {
	ingestErrs := a.ingestFiles(ctx, req)

	msgs, err := a.History.History(ctx, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("agent: load history: %w", err)
	}

	client, err := a.Catalog.Resolve(ctx, req.Provider)
	if err != nil {
		return a.finish(ctx, req, append(ingestErrs, widget.NewError(err.Error(), widget.CodeValidationError)), "")
	}
	defer client.Close()

	docNames := a.Docs.Names(req.ConversationID)
	prompt := composePrompt(req.Command, docNames)

	llmReq := llm.Request{
		System:  systemInstruction,
		History: toLLMHistory(msgs),
		Prompt:  prompt,
	}
	if llm.NativeTools(client) {
		llmReq.Tools = a.Tools.Declarations()
	} else {
		llmReq.Prompt += envelopeInstructions(a.Tools.Declarations())
	}

	res, err := a.generate(ctx, client, llmReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return a.finish(ctx, req, append(ingestErrs, widget.NewError(err.Error(), widget.CodeServerError)), "")
	}

	sess := &tools.Session{
		ConversationID: req.ConversationID,
		Docs:           a.Docs,
		LLM:            client,
		Weather:        a.Weather,
	}
	widgets, reply := a.interpret(ctx, sess, res)
	widgets = append(ingestErrs, widgets...)
	widgets = bundleChat(widgets, reply)
	widgets = validateAll(widgets)
	return a.finish(ctx, req, widgets, reply)
}

// generate invokes the model, retrying exactly once against the default
// model when the configured model identifier does not exist.
func (a *Agent) generate(ctx context.Context, client llm.Client, req llm.Request) (*llm.Result, error) {
	res, err := client.Generate(ctx, req)
	if err == nil || !llm.IsModelNotFound(err) {
		return res, err
	}
	log.Printf("agent: model not found via %s, retrying with default: %v", client.Name(), err)
	fb, fbErr := a.Catalog.Fallback(ctx)
	if fbErr != nil {
		return nil, err
	}
	defer fb.Close()
	return fb.Generate(ctx, req)
}

// interpret turns a model result into widgets. Native tool calls win;
// otherwise the text is tried as a JSON envelope; free text becomes a
// chat widget.
func (a *Agent) interpret(ctx context.Context, sess *tools.Session, res *llm.Result) ([]widget.Widget, string) {
	if len(res.Calls) > 0 {
		sess.Reply = res.Text
		var out []widget.Widget
		for _, call := range res.Calls {
			out = append(out, a.dispatch(ctx, sess, call.Name, call.Args)...)
		}
		return out, res.Text
	}

	if env, ok := ParseEnvelope(res.Text); ok {
		sess.Reply = env.Reply
		if env.Tool == "" {
			return nil, env.Reply
		}
		return a.dispatch(ctx, sess, env.Tool, env.Args), env.Reply
	}

	if res.Text != "" {
		return []widget.Widget{widget.NewChat(res.Text)}, res.Text
	}
	return []widget.Widget{widget.NewError("the model returned an empty response", widget.CodeServerError)}, ""
}

// dispatch runs one tool call and maps its failures onto error widgets.
func (a *Agent) dispatch(ctx context.Context, sess *tools.Session, name string, args []byte) []widget.Widget {
	widgets, err := a.Tools.Build(ctx, name, args, sess)
	if err == nil {
		return widgets
	}
	var be *tools.BuildError
	switch {
	case errors.As(err, &be):
		return []widget.Widget{widget.NewError(be.Message, be.Code)}
	case errors.Is(err, tools.ErrUnknownTool):
		return []widget.Widget{widget.NewError(fmt.Sprintf("the model requested an unsupported function %q", name), widget.CodeUnsupportedFn)}
	default:
		return []widget.Widget{widget.NewError(err.Error(), widget.CodeServerError)}
	}
}

// ingestFiles parses each upload into the conversation's document set and
// archives the raw bytes best effort. A file that fails to parse comes back
// as an error widget; the remaining uploads are still processed.
func (a *Agent) ingestFiles(ctx context.Context, req Request) []widget.Widget {
	var failed []widget.Widget
	for _, f := range req.Files {
		doc, err := documentFrom(f)
		if err != nil {
			log.Printf("agent: parse upload %q: %v", f.Filename, err)
			failed = append(failed, widget.NewError(
				fmt.Sprintf("could not parse upload %q: %v", f.Filename, err),
				widget.CodeValidationError,
			))
			continue
		}
		a.Docs.Put(req.ConversationID, f.Filename, doc)
		if a.Archive != nil {
			if err := a.Archive.Put(ctx, req.ConversationID, f.Filename, f.MIMEType, f.Content); err != nil {
				log.Printf("agent: archive upload %q: %v", f.Filename, err)
			}
		}
	}
	return failed
}

// finish appends the user/model pair atomically, fires the live feed, and
// packages the response.
func (a *Agent) finish(ctx context.Context, req Request, widgets []widget.Widget, reply string) (*Response, error) {
	text := reply
	if text == "" {
		text = firstChatReply(widgets)
	}
	if text == "" {
		text = fallbackModelText
	}
	now := time.Now().UnixMilli()
	err := a.History.Append(ctx, req.ConversationID,
		history.Message{Role: history.RoleUser, Parts: []history.Part{{Text: req.Command}}, Timestamp: now},
		history.Message{Role: history.RoleModel, Parts: []history.Part{{Text: text}}, Timestamp: now},
	)
	if err != nil {
		return nil, fmt.Errorf("agent: append history: %w", err)
	}
	if a.Notify != nil {
		a.Notify(req.ConversationID, widgets)
	}
	return &Response{Widgets: widgets, Reply: text}, nil
}

// bundleChat guarantees the batch carries the conversational reply. When
// the tools produced no chat widget, one is prepended so the reply renders
// ahead of the tool output.
func bundleChat(widgets []widget.Widget, reply string) []widget.Widget {
	if reply == "" {
		return widgets
	}
	for _, w := range widgets {
		if w.Type == widget.KindChat {
			return widgets
		}
	}
	return append([]widget.Widget{widget.NewChat(reply)}, widgets...)
}

// validateAll checks every candidate; a failure replaces that widget with
// an error widget and does not disturb its siblings.
func validateAll(widgets []widget.Widget) []widget.Widget {
	out := make([]widget.Widget, 0, len(widgets))
	for _, w := range widgets {
		if err := widget.Validate(w); err != nil {
			out = append(out, widget.NewError(err.Error(), widget.CodeValidationError))
			continue
		}
		out = append(out, w)
	}
	return out
}

func firstChatReply(widgets []widget.Widget) string {
	for _, w := range widgets {
		if p, ok := w.Payload.(widget.ChatPayload); ok {
			return p.Reply
		}
	}
	return ""
}

func toLLMHistory(msgs []history.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case history.RoleUser:
			out = append(out, llm.Message{Role: llm.RoleUser, Text: m.Text()})
		case history.RoleModel:
			out = append(out, llm.Message{Role: llm.RoleModel, Text: m.Text()})
		}
	}
	return out
}

func documentFrom(f UploadedFile) (*document.Structured, error) {
	return document.FromUpload(f.Content, f.MIMEType)
}

// DecodeBase64 decodes wire-format upload content, tolerating both std and
// URL-safe alphabets.
func DecodeBase64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}
