package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vovarama1992/go-utils/logger"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrNotConfigured   = errors.New("OPENAI_API_KEY not set")
	ErrProviderFailure = errors.New("LLM API error")
)

const (
	ModeOpenAI = "openai"
	ModeMock   = "mock"
)

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Gateway — единственная точка выхода к LLM. Создаётся один раз в main и
// после этого не меняется.
type Gateway struct {
	client *openai.Client // nil => mock-режим
	cfg    Config
	log    *logger.ZapLogger
}

func NewGateway(cfg Config, log *logger.ZapLogger) *Gateway {
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}

	g := &Gateway{cfg: cfg, log: log}
	if cfg.APIKey == "" {
		log.Log(logger.LogEntry{Level: "warn", Message: "OPENAI_API_KEY not set, answering with canned responses"})
		return g
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	g.client = openai.NewClientWithConfig(clientCfg)
	return g
}

func (g *Gateway) Mode() string {
	if g.client == nil {
		return ModeMock
	}
	return ModeOpenAI
}

// Complete — один запрос без ретраев. Квота и rate limit дают заготовку,
// остальные ошибки оборачиваются в ErrProviderFailure.
func (g *Gateway) Complete(ctx context.Context, question, systemPrompt string) (string, error) {
	if g.client == nil {
		return g.handleFailure(question, ErrNotConfigured)
	}

	reply, err := g.GetCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: question},
	})
	if err != nil {
		return g.handleFailure(question, err)
	}
	return reply, nil
}

func (g *Gateway) handleFailure(question string, err error) (string, error) {
	kind := Classify(err)
	if ActionFor(kind) == ActionFallback {
		if kind != KindNotConfigured {
			g.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "LLM unavailable (" + kind.String() + "), answering with fallback",
				Error:   err,
			})
		}
		return MockAnswer(question), nil
	}
	return "", fmt.Errorf("%w: %v", ErrProviderFailure, err)
}

func (g *Gateway) GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	if g.client == nil {
		return "", ErrNotConfigured
	}
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping проверяет ключ одним коротким запросом, без фолбэков.
func (g *Gateway) Ping(ctx context.Context) (string, error) {
	return g.GetCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "You are a test assistant."},
		{Role: openai.ChatMessageRoleUser, Content: "Say 'OpenAI connection successful!'"},
	})
}
