package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"pulseboard/internal/document"
	"pulseboard/internal/session"
	"pulseboard/internal/widget"
)

func sessionWithDoc(t *testing.T, filename, csvData string) *Session {
	t.Helper()
	docs, err := session.NewDocStore(8)
	if err != nil {
		t.Fatalf("NewDocStore: %v", err)
	}
	doc, err := document.FromCSV([]byte(csvData))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	docs.Put("c1", filename, doc)
	return &Session{ConversationID: "c1", Docs: docs}
}

func buildChart(t *testing.T, sess *Session, args string) []widget.Widget {
	t.Helper()
	widgets, err := (&chartTool{}).Build(context.Background(), json.RawMessage(args), sess)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return widgets
}

func TestChartTool_RejectsUnknownKind(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\n")
	_, err := (&chartTool{}).Build(context.Background(), json.RawMessage(`{"kind":"donut"}`), sess)
	be, ok := err.(*BuildError)
	if !ok || be.Code != widget.CodeValidationError {
		t.Fatalf("err = %v", err)
	}
}

func TestChartTool_DocumentSource(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\neast,20\nwest,30\n")
	widgets := buildChart(t, sess, `{"kind":"bar","title":"Sales","source":"document","filename":"sales.csv","groupBy":"region","metric":"amount","aggregation":"sum"}`)

	if len(widgets) != 1 {
		t.Fatalf("got %d widgets", len(widgets))
	}
	p := widgets[0].Payload.(widget.ChartPayload)
	if p.Source != "document" {
		t.Fatalf("source = %q", p.Source)
	}
	if p.Title != "Sales (from sales.csv)" {
		t.Fatalf("title = %q", p.Title)
	}
	want := []widget.ChartPoint{{Label: "west", Value: 40}, {Label: "east", Value: 20}}
	if len(p.Data) != 2 || p.Data[0] != want[0] || p.Data[1] != want[1] {
		t.Fatalf("data = %+v", p.Data)
	}
}

func TestChartTool_UnknownFilenameFallsBackToModelData(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\n")
	widgets := buildChart(t, sess, `{"kind":"pie","title":"Guess","source":"document","filename":"nope.csv","data":[{"label":"a","value":1}]}`)

	p := widgets[0].Payload.(widget.ChartPayload)
	if p.Source != "gemini" {
		t.Fatalf("source = %q, want model fallback", p.Source)
	}
	if len(p.Data) != 1 || p.Data[0].Label != "a" {
		t.Fatalf("data = %+v", p.Data)
	}
}

func TestChartTool_CompareFansOutTwoWidgets(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\neast,20\n")
	widgets := buildChart(t, sess, `{"kind":"bar","title":"Sales","source":"compare","filename":"sales.csv","groupBy":"region","metric":"amount","aggregation":"sum","data":[{"label":"west","value":12}]}`)

	if len(widgets) != 2 {
		t.Fatalf("got %d widgets, want 2", len(widgets))
	}
	doc := widgets[0].Payload.(widget.ChartPayload)
	model := widgets[1].Payload.(widget.ChartPayload)

	if !strings.HasSuffix(doc.Title, "(from sales.csv)") || doc.Source != "document" {
		t.Fatalf("doc chart = %+v", doc)
	}
	if !strings.HasSuffix(model.Title, "(from Gemini)") || model.Source != "gemini" {
		t.Fatalf("model chart = %+v", model)
	}
	if widgets[0].Layout.X != 0 || widgets[1].Layout.X != 6 {
		t.Fatalf("layouts = %+v / %+v", widgets[0].Layout, widgets[1].Layout)
	}

	// The document side must match the aggregator exactly.
	stored, _ := sess.Docs.Get("c1", "sales.csv")
	series, _ := document.Aggregate(stored, "region", "amount", document.AggSum)
	if len(doc.Data) != len(series) {
		t.Fatalf("doc data = %+v, aggregator = %+v", doc.Data, series)
	}
	for i := range series {
		if doc.Data[i].Label != series[i].Label || doc.Data[i].Value != series[i].Value {
			t.Fatalf("doc data diverges from aggregator at %d: %+v vs %+v", i, doc.Data[i], series[i])
		}
	}
}

func TestChartTool_ModelDataIsSanitized(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\n")
	widgets := buildChart(t, sess, `{"kind":"line","title":"Huge","data":[{"label":"a","value":9e99},{"label":"b","value":2}]}`)

	p := widgets[0].Payload.(widget.ChartPayload)
	if p.Data[0].Value != maxChartValue {
		t.Fatalf("value not clipped: %v", p.Data[0].Value)
	}
}

func TestChartTool_WidgetsValidate(t *testing.T) {
	sess := sessionWithDoc(t, "sales.csv", "region,amount\nwest,10\neast,20\n")
	widgets := buildChart(t, sess, `{"kind":"bar","source":"compare","filename":"sales.csv"}`)
	for _, w := range widgets {
		if err := widget.Validate(w); err != nil {
			t.Fatalf("produced widget fails validation: %v", err)
		}
	}
}
