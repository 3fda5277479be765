package quizgen

import (
	"fmt"
	"strings"

	"smartquiz/internal/domain"
)

// DefaultSourceCharLimit caps how much extracted source text is
// embedded in the task prompt.
const DefaultSourceCharLimit = 12000

// SystemPrompt mandates the exact output shape: a single JSON array of
// question objects and nothing else.
const SystemPrompt = "You are an expert exam writer and pedagogue. Produce EXACTLY a single JSON array of multiple-choice questions only - no commentary, no markdown fences, no extra text. " +
	"Each array item must be a JSON object with keys: text, option_a, option_b, option_c, option_d, correct_option, explanation. " +
	"correct_option must be 'a','b','c', or 'd' (lowercase). Return exactly one JSON array and nothing else."

// BuildTaskPrompt renders the user-facing half of the prompt. When
// sourceText is non-empty it is truncated to limit characters and the
// model is told to answer strictly from it, returning fewer items
// rather than fabricating content.
func BuildTaskPrompt(params domain.GenerationParams, sourceText string, limit int) string {
	if limit <= 0 {
		limit = DefaultSourceCharLimit
	}

	if strings.TrimSpace(sourceText) != "" {
		return fmt.Sprintf(
			"Generate %d multiple-choice questions for a quiz titled '%s' on the topic '%s'. "+
				"Difficulty: %s. Base the questions strictly on the source text provided and do not invent facts. "+
				"If the source does not contain enough material, return fewer items rather than unrelated content.\n\n"+
				"SOURCE:\n%s",
			params.NumQuestions, params.Title, params.Topic, params.Difficulty,
			truncate(sourceText, limit),
		)
	}

	return fmt.Sprintf(
		"Generate %d multiple-choice questions for a quiz titled '%s' on the topic '%s'. "+
			"Difficulty: %s. Return EXACTLY a JSON array where each item looks like: "+
			`{"text":"...","option_a":"...","option_b":"...","option_c":"...","option_d":"...","correct_option":"b","explanation":"..."}`,
		params.NumQuestions, params.Title, params.Topic, params.Difficulty,
	)
}

// truncate cuts s to at most limit bytes without splitting a UTF-8
// rune in half.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && s[limit]&0xC0 == 0x80 {
		limit--
	}
	return s[:limit]
}
