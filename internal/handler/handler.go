// Package handler exposes the widget pipeline and its collaborators over
// plain JSON HTTP plus one websocket feed.
package handler

import (
	"log"
	"net/http"
	"strings"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/widget"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		log.Printf("handler: encode response: %v", err)
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeWidgets answers with a bare widget object for single results and an
// array for multi-widget batches. Clients branch on the JSON shape.
func writeWidgets(w http.ResponseWriter, status int, widgets []widget.Widget) {
	if len(widgets) == 1 {
		writeJSON(w, status, widgets[0])
		return
	}
	writeJSON(w, status, widgets)
}

// writeErrorWidget answers with a single error widget so clients render
// failures the same way they render results.
func writeErrorWidget(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, widget.NewError(message, code))
}

// conversationID reads the conversation key from the query string. The
// canonical parameter is conversationId with id accepted as a short form.
func conversationID(r *http.Request) string {
	if v := strings.TrimSpace(r.URL.Query().Get("conversationId")); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("id"))
}

// statusFor maps the first error widget in a batch onto an HTTP status.
// Tool-level failures still ship a renderable batch, so they stay 200.
func statusFor(widgets []widget.Widget) int {
	for _, w := range widgets {
		p, ok := w.Payload.(widget.ErrorPayload)
		if !ok {
			continue
		}
		switch p.Code {
		case widget.CodeMissingID:
			return http.StatusBadRequest
		case widget.CodeMethodNotAllowed:
			return http.StatusMethodNotAllowed
		case widget.CodeServerError:
			return http.StatusInternalServerError
		}
	}
	return http.StatusOK
}
