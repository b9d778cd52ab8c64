package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pulseboard/internal/document"
	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type analyzeDocumentTool struct{}

type analyzeDocumentArgs struct {
	Filename string `json:"filename"`
	Question string `json:"question,omitempty"`
}

func (t *analyzeDocumentTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "analyze_document",
		Description: "Summarize an uploaded document or answer a question about its contents.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"filename": llm.String("Name of the uploaded document."),
			"question": llm.String("Optional question to answer from the document."),
		}, "filename"),
	}
}

func (t *analyzeDocumentTool) Build(ctx context.Context, raw json.RawMessage, sess *Session) ([]widget.Widget, error) {
	var args analyzeDocumentArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad analyze_document arguments"}
	}
	if args.Filename == "" {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "analyze_document requires a filename"}
	}
	doc, ok := sess.Docs.Get(sess.ConversationID, args.Filename)
	if !ok {
		return nil, &BuildError{Code: widget.CodeDocNotFound, Message: fmt.Sprintf("document %q not found in this conversation", args.Filename)}
	}

	summary := fmt.Sprintf("Document %q uploaded successfully with %d rows.", args.Filename, doc.RowCount)
	if q := strings.TrimSpace(args.Question); q != "" && sess.LLM != nil {
		if answer, err := answerQuestion(ctx, sess.LLM, args.Filename, doc, q); err == nil && answer != "" {
			summary = answer
		}
	}

	id := widget.MakeID(widget.KindDocument)
	docWidget := widget.Widget{
		ID:     id,
		Type:   widget.KindDocument,
		Layout: widget.Layout{I: id, W: 6, H: 8},
		Payload: widget.DocumentPayload{
			Filename: args.Filename,
			Fields:   doc.Fields,
			RowCount: doc.RowCount,
			Preview:  doc.Preview,
			Summary:  summary,
		},
	}
	return []widget.Widget{docWidget, widget.NewChat(summary)}, nil
}

// Summarize asks the model for a short description of a freshly uploaded
// document. Callers fall back to a canned summary when it fails.
func Summarize(ctx context.Context, client llm.Client, filename string, doc *document.Structured) (string, error) {
	fields, _ := json.Marshal(doc.Fields)
	rows, _ := json.Marshal(doc.Preview)

	prompt := fmt.Sprintf(
		"The user uploaded the document %q (%d rows).\nColumns: %s\nSample rows: %s\n\nWrite one or two sentences describing what this document contains.",
		filename, doc.RowCount, fields, rows,
	)
	res, err := client.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

// answerQuestion runs a second, tool-free model call grounded on the
// document's schema and a small sample of its rows.
func answerQuestion(ctx context.Context, client llm.Client, filename string, doc *document.Structured, question string) (string, error) {
	sample := doc.FullData
	if len(sample) > 10 {
		sample = sample[:10]
	}
	fields, _ := json.Marshal(doc.Fields)
	rows, _ := json.Marshal(sample)

	prompt := fmt.Sprintf(
		"You are analyzing the uploaded document %q (%d rows).\nColumns: %s\nSample rows: %s\n\nQuestion: %s\nAnswer concisely in plain text.",
		filename, doc.RowCount, fields, rows, question,
	)
	res, err := client.Generate(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}
