package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"

	"github.com/Vovarama1992/tutor_context/internal/ports"
	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

// contextResponse — тело GET /context/{user_id}. preferences читаем как сырой
// JSON и разбираем так же терпимо, как из базы.
type contextResponse struct {
	UserID      string            `json:"user_id"`
	Preferences json.RawMessage   `json:"preferences"`
	History     []ports.ChatEntry `json:"history"`
}

type ContextClient struct {
	baseURL string
	http    *http.Client
	log     *logger.ZapLogger
}

func NewContextClient(baseURL string, log *logger.ZapLogger) *ContextClient {
	return &ContextClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log,
	}
}

// FetchContext никогда не возвращает ошибку: любой сбой даёт пустой контекст.
func (c *ContextClient) FetchContext(ctx context.Context, userID string) *ports.ContextView {
	view, err := c.fetch(ctx, userID)
	if err != nil {
		c.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "context service unavailable, using empty context for " + userID,
			Error:   err,
		})
		return ports.EmptyContext(userID)
	}
	return view
}

func (c *ContextClient) fetch(ctx context.Context, userID string) (*ports.ContextView, error) {
	endpoint := c.baseURL + "/context/" + url.PathEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("context service status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var body contextResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode context response: %w", err)
	}

	doc, ok := prefs.DecodeStored(body.Preferences)
	if !ok {
		c.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "context service returned malformed preferences for " + userID,
		})
	}

	view := &ports.ContextView{
		UserID:      userID,
		Preferences: doc,
		History:     body.History,
	}
	if view.History == nil {
		view.History = []ports.ChatEntry{}
	}
	return view, nil
}
