package tools

import (
	"context"
	"encoding/json"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type cameraTool struct{}

type cameraArgs struct {
	StreamURL string `json:"streamUrl"`
	Title     string `json:"title,omitempty"`
}

func (t *cameraTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "create_camera",
		Description: "Show a live camera feed from a playable stream URL.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"streamUrl": llm.String("Playable HLS or WebRTC URL of the stream."),
			"title":     llm.String("Optional widget title."),
		}, "streamUrl"),
	}
}

func (t *cameraTool) Build(_ context.Context, raw json.RawMessage, _ *Session) ([]widget.Widget, error) {
	var args cameraArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad create_camera arguments"}
	}
	if args.StreamURL == "" {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "camera requires a stream URL"}
	}
	title := args.Title
	if title == "" {
		title = "Camera Feed"
	}
	id := widget.MakeID(widget.KindCamera)
	return []widget.Widget{{
		ID:     id,
		Type:   widget.KindCamera,
		Layout: widget.Layout{I: id, W: 6, H: 6},
		Payload: widget.CameraPayload{
			StreamURL: args.StreamURL,
			Title:     title,
		},
	}}, nil
}
