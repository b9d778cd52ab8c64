package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"pulseboard/internal/document"
	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type chartTool struct{}

type chartArgs struct {
	Kind        string              `json:"kind"`
	Title       string              `json:"title,omitempty"`
	Data        []widget.ChartPoint `json:"data,omitempty"`
	Source      string              `json:"source,omitempty"`
	Filename    string              `json:"filename,omitempty"`
	GroupBy     string              `json:"groupBy,omitempty"`
	Metric      string              `json:"metric,omitempty"`
	Aggregation string              `json:"aggregation,omitempty"`
}

func (t *chartTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "create_chart",
		Description: "Create a line, bar or pie chart from model knowledge, from an uploaded document, or both side by side.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"kind":  llm.Enum("Chart style.", "line", "bar", "pie"),
			"title": llm.String("Chart title."),
			"data": llm.Array(llm.Object(map[string]*llm.Schema{
				"label": llm.String("Category label."),
				"value": llm.Number("Numeric value."),
			}, "label", "value")),
			"source":      llm.Enum("Where the data comes from. Use \"document\" when charting an uploaded file, \"compare\" to chart the document next to your own figures.", "gemini", "document", "compare"),
			"filename":    llm.String("Uploaded document to chart, when source is document or compare."),
			"groupBy":     llm.String("Document column to group rows by."),
			"metric":      llm.String("Numeric document column to aggregate."),
			"aggregation": llm.Enum("Reduction over the metric column.", "count", "sum", "avg"),
		}, "kind"),
	}
}

func (t *chartTool) Build(_ context.Context, raw json.RawMessage, sess *Session) ([]widget.Widget, error) {
	var args chartArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad create_chart arguments"}
	}
	kind := widget.Kind(args.Kind)
	switch kind {
	case widget.KindLine, widget.KindBar, widget.KindPie:
	default:
		return nil, &BuildError{Code: widget.CodeValidationError, Message: fmt.Sprintf("chart kind %q is not line|bar|pie", args.Kind)}
	}

	doc, haveDoc := t.resolveDoc(sess, args.Filename)

	switch {
	case args.Source == "compare" && haveDoc:
		return t.buildCompare(kind, args, doc), nil
	case args.Source == "document" && haveDoc:
		return []widget.Widget{t.documentChart(kind, args, doc, 0)}, nil
	default:
		// Unknown filename or plain model data both land here; a chart
		// from model knowledge is better than an error.
		return []widget.Widget{t.modelChart(kind, args, 0)}, nil
	}
}

func (t *chartTool) resolveDoc(sess *Session, filename string) (*document.Structured, bool) {
	if sess == nil || sess.Docs == nil || filename == "" {
		return nil, false
	}
	return sess.Docs.Get(sess.ConversationID, filename)
}

func (t *chartTool) documentChart(kind widget.Kind, args chartArgs, doc *document.Structured, x int) widget.Widget {
	series, _ := document.Aggregate(doc, args.GroupBy, args.Metric, document.Aggregation(args.Aggregation))
	title := args.Title
	if title == "" {
		title = fmt.Sprintf("Chart of %s", firstNonEmpty(args.GroupBy, firstField(doc)))
	}
	id := widget.MakeID(kind)
	return widget.Widget{
		ID:     id,
		Type:   kind,
		Layout: widget.Layout{I: id, X: x, W: 6, H: 6},
		Payload: widget.ChartPayload{
			Title:  fmt.Sprintf("%s (from %s)", title, args.Filename),
			Data:   seriesToPoints(series),
			Source: "document",
		},
	}
}

func (t *chartTool) modelChart(kind widget.Kind, args chartArgs, x int) widget.Widget {
	title := args.Title
	if title == "" {
		title = "Chart"
	}
	id := widget.MakeID(kind)
	return widget.Widget{
		ID:     id,
		Type:   kind,
		Layout: widget.Layout{I: id, X: x, W: 6, H: 6},
		Payload: widget.ChartPayload{
			Title:  title,
			Data:   SanitizeChartPoints(args.Data),
			Source: "gemini",
		},
	}
}

// buildCompare fans out into two charts side by side: the aggregated
// document series on the left, the model's own figures on the right.
func (t *chartTool) buildCompare(kind widget.Kind, args chartArgs, doc *document.Structured) []widget.Widget {
	docChart := t.documentChart(kind, args, doc, 0)

	model := t.modelChart(kind, args, 6)
	p := model.Payload.(widget.ChartPayload)
	title := args.Title
	if title == "" {
		title = "Chart"
	}
	p.Title = fmt.Sprintf("%s (from Gemini)", title)
	model.Payload = p

	return []widget.Widget{docChart, model}
}

func seriesToPoints(series []document.SeriesPoint) []widget.ChartPoint {
	out := make([]widget.ChartPoint, 0, len(series))
	for _, s := range series {
		out = append(out, widget.ChartPoint{Label: truncateLabel(s.Label), Value: s.Value})
	}
	return out
}

func firstField(doc *document.Structured) string {
	if doc != nil && len(doc.Fields) > 0 {
		return doc.Fields[0]
	}
	return "rows"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
