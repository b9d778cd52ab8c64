package tools

import (
	"context"
	"encoding/json"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type imageTool struct{}

type imageArgs struct {
	Prompt string `json:"prompt"`
	Title  string `json:"title,omitempty"`
}

func (t *imageTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "create_image",
		Description: "Show an image matching a description on the dashboard.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"prompt": llm.String("What the image should depict."),
			"title":  llm.String("Optional widget title."),
		}, "prompt"),
	}
}

func (t *imageTool) Build(_ context.Context, raw json.RawMessage, _ *Session) ([]widget.Widget, error) {
	var args imageArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad create_image arguments"}
	}
	title := args.Title
	if title == "" {
		title = truncateLabel(args.Prompt)
	}
	if title == "" {
		title = "Generated Image"
	}
	id := widget.MakeID(widget.KindImage)
	return []widget.Widget{{
		ID:     id,
		Type:   widget.KindImage,
		Layout: widget.Layout{I: id, W: 5, H: 6},
		Payload: widget.MediaPayload{
			Src:   ImageURL(args.Prompt),
			Title: title,
		},
	}}, nil
}
