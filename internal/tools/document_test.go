package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type fakeLLM struct {
	text    string
	prompts []string
}

func (f *fakeLLM) Name() string { return "fake" }
func (f *fakeLLM) Close() error { return nil }
func (f *fakeLLM) Generate(_ context.Context, req llm.Request) (*llm.Result, error) {
	f.prompts = append(f.prompts, req.Prompt)
	return &llm.Result{Text: f.text}, nil
}

func TestAnalyzeDocument_NotFound(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\n")
	_, err := (&analyzeDocumentTool{}).Build(context.Background(), json.RawMessage(`{"filename":"missing.csv"}`), sess)
	be, ok := err.(*BuildError)
	if !ok || be.Code != widget.CodeDocNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestAnalyzeDocument_DefaultSummary(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\neast,20\n")
	widgets, err := (&analyzeDocumentTool{}).Build(context.Background(), json.RawMessage(`{"filename":"sales.csv"}`), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(widgets) != 2 {
		t.Fatalf("got %d widgets, want document plus chat", len(widgets))
	}
	p := widgets[0].Payload.(widget.DocumentPayload)
	if p.Filename != "sales.csv" || p.RowCount != 2 || len(p.Fields) != 2 {
		t.Fatalf("document payload = %+v", p)
	}
	if !strings.Contains(p.Summary, "2 rows") {
		t.Fatalf("summary = %q", p.Summary)
	}
	chat := widgets[1].Payload.(widget.ChatPayload)
	if chat.Reply != p.Summary {
		t.Fatalf("chat reply %q != summary %q", chat.Reply, p.Summary)
	}
}

func TestAnalyzeDocument_QuestionGoesToModel(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\neast,20\n")
	model := &fakeLLM{text: "West leads with 10."}
	sess.LLM = model

	widgets, err := (&analyzeDocumentTool{}).Build(context.Background(), json.RawMessage(`{"filename":"sales.csv","question":"which region leads?"}`), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := widgets[0].Payload.(widget.DocumentPayload)
	if p.Summary != "West leads with 10." {
		t.Fatalf("summary = %q", p.Summary)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("model called %d times", len(model.prompts))
	}
	prompt := model.prompts[0]
	if !strings.Contains(prompt, "sales.csv") || !strings.Contains(prompt, "which region leads?") {
		t.Fatalf("prompt missing context: %q", prompt)
	}
	if !strings.Contains(prompt, "region") {
		t.Fatalf("prompt missing schema: %q", prompt)
	}
}

func TestAnalyzeDocument_ModelFailureFallsBackToDefault(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\n")
	sess.LLM = &fakeLLM{text: ""}

	widgets, err := (&analyzeDocumentTool{}).Build(context.Background(), json.RawMessage(`{"filename":"sales.csv","question":"?"}`), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p := widgets[0].Payload.(widget.DocumentPayload)
	if !strings.Contains(p.Summary, "uploaded successfully") {
		t.Fatalf("summary = %q", p.Summary)
	}
}
