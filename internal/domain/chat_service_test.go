package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vovarama1992/tutor_context/internal/ports"
	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

func testLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) Append(ctx context.Context, userID, question, answer string) (int64, error) {
	args := m.Called(ctx, userID, question, answer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepo) ListRecent(ctx context.Context, userID string, limit int) ([]ports.ChatEntry, error) {
	args := m.Called(ctx, userID, limit)
	entries, _ := args.Get(0).([]ports.ChatEntry)
	return entries, args.Error(1)
}

func (m *MockHistoryRepo) ListAll(ctx context.Context, limit int) ([]ports.ChatEntry, error) {
	args := m.Called(ctx, limit)
	entries, _ := args.Get(0).([]ports.ChatEntry)
	return entries, args.Error(1)
}

func (m *MockHistoryRepo) Stats(ctx context.Context) (*ports.HistoryStats, error) {
	args := m.Called(ctx)
	st, _ := args.Get(0).(*ports.HistoryStats)
	return st, args.Error(1)
}

type MockContextClient struct {
	mock.Mock
}

func (m *MockContextClient) FetchContext(ctx context.Context, userID string) *ports.ContextView {
	return m.Called(ctx, userID).Get(0).(*ports.ContextView)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, question, systemPrompt string) (string, error) {
	args := m.Called(ctx, question, systemPrompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompleter) Mode() string {
	return "mock"
}

type recordingNotifier struct {
	details []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, _ error, details string) error {
	n.details = append(n.details, details)
	return nil
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	history := new(MockHistoryRepo)
	contexts := new(MockContextClient)
	llm := new(MockCompleter)

	contexts.On("FetchContext", ctx, "bob").Return(&ports.ContextView{
		UserID:      "bob",
		Preferences: prefs.Document{Language: "en"},
	})
	history.On("ListRecent", ctx, "bob", 5).Return([]ports.ChatEntry{
		{Question: "second", Answer: "two", CreatedAt: time.Now()},
		{Question: "first", Answer: "one", CreatedAt: time.Now().Add(-time.Minute)},
	}, nil)
	llm.On("Complete", ctx, "what next?", mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Preferred language: en") &&
			strings.Index(p, "Q: first") < strings.Index(p, "Q: second")
	})).Return("learn go", nil)
	history.On("Append", ctx, "bob", "what next?", "learn go").Return(int64(1), nil)

	svc := NewChatService(contexts, history, llm, &recordingNotifier{}, testLogger())
	answer, err := svc.Ask(ctx, "bob", "what next?")
	require.NoError(t, err)
	assert.Equal(t, "learn go", answer)

	history.AssertExpectations(t)
	llm.AssertExpectations(t)
}

func TestAskPassesEmptyStringsThrough(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		question string
	}{
		{"empty question", "bob", ""},
		{"blank question", "bob", "   "},
		{"empty user", "", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			history := new(MockHistoryRepo)
			contexts := new(MockContextClient)
			llm := new(MockCompleter)

			contexts.On("FetchContext", ctx, tt.userID).Return(ports.EmptyContext(tt.userID))
			history.On("ListRecent", ctx, tt.userID, 5).Return([]ports.ChatEntry{}, nil)
			llm.On("Complete", ctx, tt.question, mock.Anything).Return("fallback", nil)
			history.On("Append", ctx, tt.userID, tt.question, "fallback").Return(int64(1), nil)

			svc := NewChatService(contexts, history, llm, &recordingNotifier{}, testLogger())
			answer, err := svc.Ask(ctx, tt.userID, tt.question)
			require.NoError(t, err)
			assert.Equal(t, "fallback", answer)

			history.AssertExpectations(t)
		})
	}
}

func TestAskLLMErrorIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	history := new(MockHistoryRepo)
	contexts := new(MockContextClient)
	llm := new(MockCompleter)
	notifier := &recordingNotifier{}

	contexts.On("FetchContext", ctx, "bob").Return(ports.EmptyContext("bob"))
	history.On("ListRecent", ctx, "bob", 5).Return([]ports.ChatEntry{}, nil)
	llm.On("Complete", ctx, "hello", mock.Anything).Return("", errors.New("LLM API error: boom"))

	svc := NewChatService(contexts, history, llm, notifier, testLogger())
	_, err := svc.Ask(ctx, "bob", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, notifier.details, 1)
}

func TestHistoryLimit(t *testing.T) {
	ctx := context.Background()
	history := new(MockHistoryRepo)
	history.On("ListRecent", ctx, "bob", ports.MaxHistoryLimit).Return([]ports.ChatEntry{}, nil)

	svc := NewChatService(new(MockContextClient), history, new(MockCompleter), &recordingNotifier{}, testLogger())

	_, err := svc.History(ctx, "bob", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.History(ctx, "bob", 5000)
	require.NoError(t, err)
	history.AssertExpectations(t)
}

func TestContextViewUsesLocalHistory(t *testing.T) {
	ctx := context.Background()
	history := new(MockHistoryRepo)
	contexts := new(MockContextClient)

	contexts.On("FetchContext", ctx, "bob").Return(&ports.ContextView{
		UserID:      "bob",
		Preferences: prefs.Document{Language: "de"},
		History:     []ports.ChatEntry{{Question: "remote"}},
	})
	history.On("ListRecent", ctx, "bob", ports.DefaultHistoryLimit).Return([]ports.ChatEntry{{Question: "local"}}, nil)

	svc := NewChatService(contexts, history, new(MockCompleter), &recordingNotifier{}, testLogger())
	view, err := svc.ContextView(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "de", view.Preferences.Language)
	require.Len(t, view.History, 1)
	assert.Equal(t, "local", view.History[0].Question)
}

func TestBuildSystemPrompt(t *testing.T) {
	p := BuildSystemPrompt(prefs.Document{}, nil)
	assert.True(t, strings.HasPrefix(p, SystemInstruction))
	assert.Contains(t, p, "No profile information available.")
	assert.Contains(t, p, "No previous conversation.")

	recent := make([]ports.ChatEntry, 0, 7)
	for _, q := range []string{"q7", "q6", "q5", "q4", "q3", "q2", "q1"} {
		recent = append(recent, ports.ChatEntry{Question: q, Answer: "a"})
	}
	p = BuildSystemPrompt(prefs.Document{}, recent)
	assert.NotContains(t, p, "Q: q2")
	assert.NotContains(t, p, "Q: q1")
	assert.True(t, strings.Index(p, "Q: q3") < strings.Index(p, "Q: q7"))
}
