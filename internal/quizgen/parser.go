package quizgen

import (
	"encoding/json"
	"regexp"
	"strings"

	"smartquiz/internal/domain"
)

// ParsedQuestion is one normalized question record extracted from raw
// model output. IDs and ownership are assigned later by the job runner.
type ParsedQuestion struct {
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
	Explanation   string
}

var (
	fencedBlockRe   = regexp.MustCompile("(?s)```(?:json)?\\s*([\\[{].*[\\]}])\\s*```")
	bracketSpanRe   = regexp.MustCompile(`(?s)([\[{].*[\]}])`)
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// Parse coerces raw provider text into a normalized question sequence.
// The result is deterministic: parsing the same raw text twice yields
// identical output. Returns a CodeParse error when no JSON array can
// be recovered. If limit is positive the sequence is truncated to at
// most limit items; fewer items than requested is not an error.
func Parse(raw string, limit int) ([]ParsedQuestion, error) {
	span := extractJSONSpan(raw)
	if span == "" {
		span = raw
	}

	value, err := parseWithRepairs(span)
	if err != nil {
		return nil, domain.NewParseError("model output is not parseable JSON", err)
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, domain.NewParseError("model returned JSON but it is not an array", nil)
	}

	out := make([]ParsedQuestion, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			// Non-object elements are skipped, not fatal to the batch.
			continue
		}
		out = append(out, normalize(obj))
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// extractJSONSpan locates the JSON payload inside free-form model
// output: a fenced code block when present, otherwise the first
// balanced-looking bracket span.
func extractJSONSpan(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bracketSpanRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// parseWithRepairs attempts a strict JSON parse, then retries with each
// repair pass applied to the original span on its own. Each pass runs
// independently so one repair mangling otherwise-valid text (quote
// normalization hitting an apostrophe inside a string) cannot break the
// others. A final pass combines both repairs for output that needs them
// at once.
func parseWithRepairs(span string) (interface{}, error) {
	var value interface{}
	err := json.Unmarshal([]byte(span), &value)
	if err == nil {
		return value, nil
	}

	candidates := []string{
		normalizeQuotes(span),
		stripTrailingCommas(span),
		stripTrailingCommas(normalizeQuotes(span)),
	}
	for _, fixed := range candidates {
		if jsonErr := json.Unmarshal([]byte(fixed), &value); jsonErr == nil {
			return value, nil
		}
	}
	return nil, err
}

// normalizeQuotes rewrites single-quoted JSON to double quotes.
func normalizeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `"`)
}

// stripTrailingCommas drops commas directly before a closing bracket.
func stripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// normalize maps one raw object to a ParsedQuestion, accepting the
// short aliases the models tend to emit.
func normalize(obj map[string]interface{}) ParsedQuestion {
	q := ParsedQuestion{
		Text:        strings.TrimSpace(stringField(obj, "text")),
		OptionA:     strings.TrimSpace(stringField(obj, "option_a", "a")),
		OptionB:     strings.TrimSpace(stringField(obj, "option_b", "b")),
		OptionC:     strings.TrimSpace(stringField(obj, "option_c", "c")),
		OptionD:     strings.TrimSpace(stringField(obj, "option_d", "d")),
		Explanation: strings.TrimSpace(stringField(obj, "explanation")),
	}
	q.CorrectOption = normalizeCorrectOption(stringField(obj, "correct_option", "answer"))
	return q
}

// normalizeCorrectOption coerces the model's answer label to one of
// a|b|c|d: lowercase it, fall back to its first character when it is
// itself a valid label, and default to "a" otherwise.
func normalizeCorrectOption(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if domain.IsCorrectOption(v) {
		return v
	}
	if v != "" && domain.IsCorrectOption(v[:1]) {
		return v[:1]
	}
	return "a"
}

// stringField returns the first non-empty string value among the given
// keys.
func stringField(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if raw, ok := obj[key]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
