package delivery

import (
	"io"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/tutor_context/internal/ports"
	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

// ContextHandler — HTTP-обёртка над context store.
type ContextHandler struct {
	svc ports.ContextService
	log *logger.ZapLogger
}

func NewContextHandler(svc ports.ContextService, log *logger.ZapLogger) *ContextHandler {
	return &ContextHandler{svc: svc, log: log}
}

type updateContextRequest struct {
	UserID      string         `json:"user_id,omitempty"`
	Preferences prefs.Document `json:"preferences"`
}

type appendChatRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GET /context/{user_id}
func (h *ContextHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		http.NotFound(w, r)
		return
	}

	view, err := h.svc.GetContext(r.Context(), userID)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "get context failed", Error: err})
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// POST /context/{user_id}
func (h *ContextHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}

	var req updateContextRequest
	if err := prefs.DecodeStrict(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID != "" && req.UserID != userID {
		writeError(w, http.StatusBadRequest, "user_id in body does not match path")
		return
	}

	if err := h.svc.UpdateContext(r.Context(), userID, req.Preferences); err != nil {
		h.log.Log(logger.LogEntry{Level: "warn", Message: "update context failed", Error: err})
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ports.Ack{Status: "success", Message: "Context updated successfully"})
}

// POST /chat/{user_id}
func (h *ContextHandler) AppendChat(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		http.NotFound(w, r)
		return
	}

	var req appendChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	if err := h.svc.AppendChat(r.Context(), userID, req.Question, req.Answer); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ports.Ack{Status: "success", Message: "Chat history saved successfully"})
}
