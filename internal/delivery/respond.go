package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/tutor_context/internal/domain"
	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

const maxBodyBytes = 1 << 20

// ErrorResponse — тело ошибки: {"detail": "..."}
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, ErrorResponse{Detail: detail})
}

// statusFor: ошибки клиента -> 400, всё остальное -> 500 с текстом ошибки.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, prefs.ErrInvalidDocument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// userIDParam достаёт {user_id} как есть, без обрезки пробелов.
// chi матчит по RawPath, если он задан, и тогда параметр ещё экранирован;
// иначе это уже раскодированный Path, и второй раз его не трогаем.
func userIDParam(r *http.Request) string {
	id := chi.URLParam(r, "user_id")
	if r.URL.RawPath == "" {
		return id
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}
