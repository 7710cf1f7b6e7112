package llm

import "strings"

// CleanJSONResponse strips markdown code fences around a JSON reply.
func CleanJSONResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}

// ExtractJSON returns the outermost {...} or [...] span of text, or the
// cleaned text when none is found.
func ExtractJSON(text string) string {
	text = CleanJSONResponse(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "}]")
	if start == -1 || end == -1 || end <= start {
		return text
	}
	return text[start : end+1]
}
