package feedback

import "strings"

// CleanModelResponse strips markdown code fences that chat models like
// to wrap JSON in, leaving the payload ready for parsing.
func CleanModelResponse(response string) string {
	if !strings.Contains(response, "```") {
		return strings.TrimSpace(response)
	}

	start := -1
	if strings.Contains(response, "```json") {
		start = strings.Index(response, "```json") + 7
	} else {
		start = strings.Index(response, "```") + 3
	}

	end := strings.LastIndex(response, "```")
	if start != -1 && end != -1 && end > start {
		return strings.TrimSpace(response[start:end])
	}
	return strings.TrimSpace(response)
}
