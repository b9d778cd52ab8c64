package tools

import (
	"context"
	"encoding/json"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type chatReplyTool struct{}

type chatArgs struct {
	Reply string `json:"reply"`
}

func (t *chatReplyTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "chat_reply",
		Description: "Answer the user conversationally without creating a dashboard widget.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"reply": llm.String("The answer to show the user."),
		}, "reply"),
	}
}

func (t *chatReplyTool) Build(_ context.Context, raw json.RawMessage, sess *Session) ([]widget.Widget, error) {
	var args chatArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad chat_reply arguments"}
	}
	reply := args.Reply
	if reply == "" {
		reply = sess.Reply
	}
	if reply == "" {
		reply = "I didn't quite get that. Could you rephrase?"
	}
	return []widget.Widget{widget.NewChat(reply)}, nil
}
