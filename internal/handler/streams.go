package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"pulseboard/internal/stream"
	"pulseboard/internal/widget"
)

// StreamsHandler drives the media relay: sessions start on demand and
// come back as playable HLS or WebRTC URLs for camera widgets.
type StreamsHandler struct {
	manager *stream.Manager
}

func NewStreamsHandler(manager *stream.Manager) *StreamsHandler {
	return &StreamsHandler{manager: manager}
}

type streamStartRequest struct {
	Source   string `json:"source"`
	Protocol string `json:"protocol,omitempty"`
}

type streamStopRequest struct {
	Path string `json:"path"`
}

func (h *StreamsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if !h.ensure(w, r, http.MethodPost) {
		return
	}
	var req streamStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWidget(w, http.StatusBadRequest, "malformed request body", widget.CodeValidationError)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		writeErrorWidget(w, http.StatusBadRequest, "stream source is required", widget.CodeValidationError)
		return
	}
	protocol := stream.Protocol(req.Protocol)
	if protocol == "" {
		protocol = stream.ProtocolHLS
	}

	res, err := h.manager.StartStream(r.Context(), req.Source, protocol)
	switch {
	case errors.Is(err, stream.ErrBadProtocol):
		writeErrorWidget(w, http.StatusBadRequest, err.Error(), widget.CodeValidationError)
		return
	case errors.Is(err, stream.ErrStreamNotReady):
		writeErrorWidget(w, http.StatusGatewayTimeout, "stream did not become ready in time", widget.CodeServerError)
		return
	case err != nil:
		log.Printf("handler: start stream: %v", err)
		writeErrorWidget(w, http.StatusBadGateway, "stream relay unavailable", widget.CodeServerError)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *StreamsHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if !h.ensure(w, r, http.MethodPost) {
		return
	}
	var req streamStopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorWidget(w, http.StatusBadRequest, "malformed request body", widget.CodeValidationError)
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeErrorWidget(w, http.StatusBadRequest, "stream path is required", widget.CodeValidationError)
		return
	}
	if err := h.manager.StopStream(r.Context(), req.Path); err != nil {
		log.Printf("handler: stop stream %q: %v", req.Path, err)
		writeErrorWidget(w, http.StatusBadGateway, "stream relay unavailable", widget.CodeServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *StreamsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !h.ensure(w, r, http.MethodGet) {
		return
	}
	list, err := h.manager.ListActivePaths(r.Context())
	if err != nil {
		log.Printf("handler: list streams: %v", err)
		writeErrorWidget(w, http.StatusBadGateway, "stream relay unavailable", widget.CodeServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *StreamsHandler) ensure(w http.ResponseWriter, r *http.Request, method string) bool {
	if h.manager == nil {
		writeErrorWidget(w, http.StatusInternalServerError, "stream relay is not configured", widget.CodeServerError)
		return false
	}
	if r.Method != method {
		writeErrorWidget(w, http.StatusMethodNotAllowed, "method "+r.Method+" is not allowed", widget.CodeMethodNotAllowed)
		return false
	}
	return true
}
