package delivery

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/tutor_context/internal/ports"
)

const ServiceVersion = "1.0.0"

// ChatHandler — эндпоинты chat service.
type ChatHandler struct {
	svc     ports.ChatService
	llmMode string
	log     *logger.ZapLogger
}

func NewChatHandler(svc ports.ChatService, llmMode string, log *logger.ZapLogger) *ChatHandler {
	return &ChatHandler{
		svc:     svc,
		llmMode: llmMode,
		log:     log,
	}
}

type askRequest struct {
	UserID   string `json:"userId"`
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// POST /ask
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.UserID, req.Question)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "ask failed for " + req.UserID, Error: err})
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer})
}

// GET /history/{user_id}?limit=N
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		http.NotFound(w, r)
		return
	}

	limit := ports.DefaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	history, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// GET /context/{user_id}
func (h *ChatHandler) Context(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		http.NotFound(w, r)
		return
	}

	view, err := h.svc.ContextView(r.Context(), userID)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "context view failed", Error: err})
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /
func (h *ChatHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "Chatbot Service",
		"version":  ServiceVersion,
		"llm_mode": h.llmMode,
		"endpoints": []string{
			"POST /ask",
			"GET /history/{user_id}?limit=N",
			"GET /context/{user_id}",
		},
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
