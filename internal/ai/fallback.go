package ai

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind — категория сбоя LLM.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNotConfigured
	KindQuota
	KindRateLimit
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotConfigured:
		return "not_configured"
	case KindQuota:
		return "quota"
	case KindRateLimit:
		return "rate_limit"
	}
	return "other"
}

type Action int

const (
	ActionPropagate Action = iota
	ActionFallback
)

// Policy — что делать при каждой категории сбоя. Всё, чего нет в таблице,
// пробрасывается наверх.
var Policy = map[ErrorKind]Action{
	KindNotConfigured: ActionFallback,
	KindQuota:         ActionFallback,
	KindRateLimit:     ActionFallback,
	KindOther:         ActionPropagate,
}

// ActionFor возвращает действие для категории.
func ActionFor(kind ErrorKind) Action {
	if a, ok := Policy[kind]; ok {
		return a
	}
	return ActionPropagate
}

// Classify раскладывает ошибку провайдера по категориям. Квоту проверяем
// раньше rate limit: OpenAI отдаёт её тоже с 429.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, ErrNotConfigured) {
		return KindNotConfigured
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
			return KindQuota
		}
		if apiErr.Type == "insufficient_quota" {
			return KindQuota
		}
		if apiErr.HTTPStatusCode == 429 {
			return KindRateLimit
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota"):
		return KindQuota
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "rate_limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "status code: 429"):
		return KindRateLimit
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == 429 {
		return KindRateLimit
	}
	return KindOther
}

// GenericFallback — ответ, когда в таблице заготовок ничего не нашлось.
const GenericFallback = "I'm sorry, the AI assistant is temporarily unavailable. Please try again in a little while."

var mockAnswers = map[string]string{
	"hello": "Hello! I'm your learning assistant. I'm running in offline mode right now, but I can still point you in the right direction.",
	"hi":    "Hello! I'm your learning assistant. I'm running in offline mode right now, but I can still point you in the right direction.",
	"help":  "You can ask me about your learning progress, what to learn next, or how to plan your study time.",
	"what is my current learning progress?": "I can't analyse your progress in detail right now. Your learning path in your profile shows the latest completion percentage.",
	"what should i learn next?":             "A good next step is the first skill on your to-learn list. Start with a short course and practise on a small project.",
	"how much time should i study?":         "Consistency beats intensity: a few focused sessions every week, sized to the hours you have available, work best.",
}

// MockAnswer отвечает заготовкой по нормализованному вопросу.
func MockAnswer(question string) string {
	if a, ok := mockAnswers[strings.ToLower(strings.TrimSpace(question))]; ok {
		return a
	}
	return GenericFallback
}

// IsMockAnswer — true для любого ответа из таблицы или общего фолбэка.
func IsMockAnswer(answer string) bool {
	if answer == GenericFallback {
		return true
	}
	for _, a := range mockAnswers {
		if a == answer {
			return true
		}
	}
	return false
}
