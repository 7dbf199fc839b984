package delivery

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func newBaseRouter(log *logger.ZapLogger) chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
	}))
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		httputil.RecoverMiddleware,
		requestLogger(log),
	)
	r.Get("/healthz", healthz)
	return r
}

// NewContextRouter — роуты context store.
func NewContextRouter(h *ContextHandler, log *logger.ZapLogger) http.Handler {
	r := newBaseRouter(log)
	RegisterContextRoutes(r, h)
	return r
}

func RegisterContextRoutes(r chi.Router, h *ContextHandler) {
	r.Get("/context/{user_id}", h.Get)
	r.Post("/context/{user_id}", h.Update)
	r.Post("/chat/{user_id}", h.AppendChat)
}

// NewChatRouter — роуты chat service. askPerMinute <= 0 отключает лимит на /ask.
func NewChatRouter(h *ChatHandler, askPerMinute int, log *logger.ZapLogger) http.Handler {
	r := newBaseRouter(log)
	RegisterChatRoutes(r, h, askPerMinute)
	return r
}

func RegisterChatRoutes(r chi.Router, h *ChatHandler, askPerMinute int) {
	r.Get("/", h.Root)

	if askPerMinute > 0 {
		r.With(httprate.LimitByIP(askPerMinute, time.Minute)).Post("/ask", h.Ask)
	} else {
		r.Post("/ask", h.Ask)
	}

	r.Get("/history/{user_id}", h.History)
	r.Get("/context/{user_id}", h.Context)
}

func requestLogger(log *logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := "info"
			if ww.Status() >= http.StatusInternalServerError {
				level = "error"
			}
			log.Log(logger.LogEntry{
				Level: level,
				Message: fmt.Sprintf("%s %s -> %d (%s) req=%s",
					r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond),
					middleware.GetReqID(r.Context())),
			})
		})
	}
}
