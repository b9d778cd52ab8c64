package tools

import (
	"context"
	"encoding/json"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type videoTool struct{}

type videoArgs struct {
	URL   string `json:"url,omitempty"`
	Query string `json:"query,omitempty"`
	Title string `json:"title,omitempty"`
}

func (t *videoTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "create_video",
		Description: "Embed a playable video on the dashboard.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"url":   llm.String("Direct https URL of an mp4 to play, if known."),
			"query": llm.String("Topic of the requested video."),
			"title": llm.String("Optional widget title."),
		}),
	}
}

func (t *videoTool) Build(_ context.Context, raw json.RawMessage, _ *Session) ([]widget.Widget, error) {
	var args videoArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad create_video arguments"}
	}
	title := args.Title
	if title == "" {
		title = truncateLabel(args.Query)
	}
	if title == "" {
		title = "Video"
	}
	id := widget.MakeID(widget.KindVideo)
	return []widget.Widget{{
		ID:     id,
		Type:   widget.KindVideo,
		Layout: widget.Layout{I: id, W: 6, H: 6},
		Payload: widget.MediaPayload{
			Src:   EnsureHTTPSMP4(args.URL),
			Title: title,
		},
	}}, nil
}
