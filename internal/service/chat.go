package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/golf-tee-booking/internal/apperr"
)

const maxPromptLength = 2000

// ChatAssistant answers booking questions offline. It recognizes the
// courses it knows about and otherwise explains how booking works.
type ChatAssistant struct {
	courses []string
}

func NewChatAssistant(courses []string) *ChatAssistant {
	return &ChatAssistant{courses: courses}
}

// Reply returns a deterministic answer to prompt.
func (a *ChatAssistant) Reply(_ context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperr.Validation("Prompt is required")
	}
	if len(prompt) > maxPromptLength {
		return "", apperr.Validation(fmt.Sprintf("Prompt must be at most %d characters", maxPromptLength))
	}

	lower := strings.ToLower(prompt)
	for _, c := range a.courses {
		if strings.Contains(lower, strings.ToLower(c)) {
			return fmt.Sprintf("%s offers 9-hole and 18-hole rounds with tee times from 07:00 to 12:00. "+
				"Pick a slot on the tee-times page and book it for up to 4 players.", c), nil
		}
	}

	switch {
	case strings.Contains(lower, "cancel"):
		return "Bookings cannot be cancelled online yet. Please contact the pro shop.", nil
	case strings.Contains(lower, "player"):
		return "Each booking covers between 1 and 4 players.", nil
	}
	return fmt.Sprintf("I'm your golf booking assistant. We have tee times at %s. "+
		"Choose a course and round length to see open slots.", strings.Join(a.courses, ", ")), nil
}
