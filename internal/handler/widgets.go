package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"pulseboard/internal/agent"
	"pulseboard/internal/history"
	"pulseboard/internal/session"
	"pulseboard/internal/widget"
)

// WidgetsHandler serves the core command endpoint plus conversation
// history fetch and reset.
type WidgetsHandler struct {
	agent   *agent.Agent
	history history.Store
	docs    *session.DocStore
}

func NewWidgetsHandler(a *agent.Agent, hist history.Store, docs *session.DocStore) *WidgetsHandler {
	return &WidgetsHandler{agent: a, history: hist, docs: docs}
}

type widgetRequestFile struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	Content  string `json:"content"`
}

// widgetRequest carries one command. A single upload travels in the
// base64File/fileName/mimeType triple; files allows several at once.
type widgetRequest struct {
	ConversationID string              `json:"conversationId"`
	ID             string              `json:"id"`
	Text           string              `json:"text"`
	Command        string              `json:"command"`
	Model          string              `json:"model,omitempty"`
	Base64File     string              `json:"base64File,omitempty"`
	FileName       string              `json:"fileName,omitempty"`
	MIMEType       string              `json:"mimeType,omitempty"`
	Files          []widgetRequestFile `json:"files,omitempty"`
}

func (h *WidgetsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.resolve(w, r)
	case http.MethodGet:
		h.getHistory(w, r)
	case http.MethodDelete:
		h.clear(w, r)
	default:
		writeErrorWidget(w, http.StatusMethodNotAllowed, "method "+r.Method+" is not allowed", widget.CodeMethodNotAllowed)
	}
}

func (h *WidgetsHandler) resolve(w http.ResponseWriter, r *http.Request) {
	var req widgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWidget(w, http.StatusBadRequest, "malformed request body", widget.CodeValidationError)
		return
	}
	id := strings.TrimSpace(firstOf(req.ConversationID, req.ID))
	if id == "" {
		writeErrorWidget(w, http.StatusBadRequest, "conversationId is required", widget.CodeMissingID)
		return
	}
	text := strings.TrimSpace(firstOf(req.Text, req.Command))
	if text == "" {
		writeErrorWidget(w, http.StatusBadRequest, "text is required", widget.CodeValidationError)
		return
	}

	uploads := req.Files
	if req.Base64File != "" {
		uploads = append([]widgetRequestFile{{
			Filename: req.FileName,
			MIMEType: req.MIMEType,
			Content:  req.Base64File,
		}}, uploads...)
	}
	files := make([]agent.UploadedFile, 0, len(uploads))
	for _, f := range uploads {
		content, err := agent.DecodeBase64(f.Content)
		if err != nil {
			writeErrorWidget(w, http.StatusBadRequest, "file "+f.Filename+" is not valid base64", widget.CodeValidationError)
			return
		}
		files = append(files, agent.UploadedFile{Filename: f.Filename, MIMEType: f.MIMEType, Content: content})
	}

	res, err := h.agent.Resolve(r.Context(), agent.Request{
		ConversationID: id,
		Command:        text,
		Provider:       req.Model,
		Files:          files,
	})
	if err != nil {
		log.Printf("handler: resolve widgets: %v", err)
		writeErrorWidget(w, http.StatusInternalServerError, "widget resolution failed", widget.CodeServerError)
		return
	}
	writeWidgets(w, statusFor(res.Widgets), res.Widgets)
}

func (h *WidgetsHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	if id == "" {
		writeErrorWidget(w, http.StatusBadRequest, "conversationId is required", widget.CodeMissingID)
		return
	}
	msgs, err := h.history.History(r.Context(), id)
	if err != nil {
		log.Printf("handler: load history: %v", err)
		writeErrorWidget(w, http.StatusInternalServerError, "history unavailable", widget.CodeServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": msgs})
}

func (h *WidgetsHandler) clear(w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	if id == "" {
		writeErrorWidget(w, http.StatusBadRequest, "conversationId is required", widget.CodeMissingID)
		return
	}
	if err := h.history.Clear(r.Context(), id); err != nil {
		log.Printf("handler: clear history: %v", err)
		writeErrorWidget(w, http.StatusInternalServerError, "history reset failed", widget.CodeServerError)
		return
	}
	h.docs.Clear(id)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
