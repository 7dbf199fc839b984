package domain

import (
	"strings"

	"github.com/Vovarama1992/tutor_context/internal/ports"
	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

const SystemInstruction = `You are a helpful learning assistant.
Use the user's profile and the recent conversation to give personalised, practical answers.
Keep answers concise. If the profile is empty, answer in general terms.`

// сколько последних пар вопрос/ответ попадает в промпт
const promptHistoryLimit = 5

// BuildSystemPrompt собирает системное сообщение. recent приходит новыми
// сверху, в промпт идёт в хронологическом порядке.
func BuildSystemPrompt(doc prefs.Document, recent []ports.ChatEntry) string {
	var b strings.Builder
	b.WriteString(SystemInstruction)

	b.WriteString("\n\nUser profile:\n")
	b.WriteString(prefs.Format(doc))

	b.WriteString("\n\nRecent conversation:\n")
	if len(recent) == 0 {
		b.WriteString("No previous conversation.")
		return b.String()
	}

	if len(recent) > promptHistoryLimit {
		recent = recent[:promptHistoryLimit]
	}
	for i := len(recent) - 1; i >= 0; i-- {
		b.WriteString("Q: ")
		b.WriteString(recent[i].Question)
		b.WriteString("\nA: ")
		b.WriteString(recent[i].Answer)
		if i > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
