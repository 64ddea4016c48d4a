package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/antinvestor/blueprint/internal/domain"
)

// extractJSONArray pulls the JSON array payload out of a raw model response.
// Markdown fences are stripped first; models also tend to surround the
// payload with prose, so the slice between the first '[' and the last ']'
// is what gets decoded.
func extractJSONArray(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON array found in response", domain.ErrParseFailure)
	}
	return text[start : end+1], nil
}

// parseCandidates decodes a raw model response into a candidate slice.
func parseCandidates[T any](raw string) ([]T, error) {
	payload, err := extractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	var candidates []T
	if err = json.Unmarshal([]byte(payload), &candidates); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrParseFailure, err.Error())
	}
	return candidates, nil
}
