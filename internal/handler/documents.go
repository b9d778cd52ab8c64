package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"pulseboard/internal/agent"
	"pulseboard/internal/document"
	"pulseboard/internal/session"
	"pulseboard/internal/widget"
)

// Summarizer produces a short free-text description of a parsed document.
// Nil is fine; uploads then carry a deterministic summary.
type Summarizer func(ctx context.Context, filename string, doc *document.Structured) (string, error)

// DocumentsHandler accepts uploads outside the command flow and lists the
// documents a conversation already holds.
type DocumentsHandler struct {
	docs      *session.DocStore
	archive   agent.Archiver
	summarize Summarizer
}

func NewDocumentsHandler(docs *session.DocStore, archive agent.Archiver, summarize Summarizer) *DocumentsHandler {
	return &DocumentsHandler{docs: docs, archive: archive, summarize: summarize}
}

type documentUploadRequest struct {
	ConversationID string `json:"conversationId"`
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	MIMEType       string `json:"mimeType"`
	Content        string `json:"content"`
}

func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.upload(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeErrorWidget(w, http.StatusMethodNotAllowed, "method "+r.Method+" is not allowed", widget.CodeMethodNotAllowed)
	}
}

func (h *DocumentsHandler) upload(w http.ResponseWriter, r *http.Request) {
	var req documentUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWidget(w, http.StatusBadRequest, "malformed request body", widget.CodeValidationError)
		return
	}
	id := strings.TrimSpace(firstOf(req.ConversationID, req.ID))
	if id == "" {
		writeErrorWidget(w, http.StatusBadRequest, "conversationId is required", widget.CodeMissingID)
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeErrorWidget(w, http.StatusBadRequest, "filename is required", widget.CodeValidationError)
		return
	}
	content, err := agent.DecodeBase64(req.Content)
	if err != nil {
		writeErrorWidget(w, http.StatusBadRequest, "content is not valid base64", widget.CodeValidationError)
		return
	}

	doc, err := document.FromUpload(content, req.MIMEType)
	if err != nil {
		writeErrorWidget(w, http.StatusBadRequest, fmt.Sprintf("could not parse %q: %v", req.Filename, err), widget.CodeValidationError)
		return
	}
	h.docs.Put(id, req.Filename, doc)
	if h.archive != nil {
		if err := h.archive.Put(r.Context(), id, req.Filename, req.MIMEType, content); err != nil {
			log.Printf("handler: archive upload %q: %v", req.Filename, err)
		}
	}

	summary := fmt.Sprintf("Document %q uploaded successfully with %d rows.", req.Filename, doc.RowCount)
	if h.summarize != nil {
		if s, err := h.summarize(r.Context(), req.Filename, doc); err != nil {
			log.Printf("handler: summarize %q: %v", req.Filename, err)
		} else if s != "" {
			summary = s
		}
	}

	writeJSON(w, http.StatusOK, widget.DocumentPayload{
		Filename: req.Filename,
		Fields:   doc.Fields,
		RowCount: doc.RowCount,
		Preview:  doc.Preview,
		Summary:  summary,
	})
}

func (h *DocumentsHandler) list(w http.ResponseWriter, r *http.Request) {
	id := conversationID(r)
	if id == "" {
		writeErrorWidget(w, http.StatusBadRequest, "conversationId is required", widget.CodeMissingID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": h.docs.Names(id)})
}
