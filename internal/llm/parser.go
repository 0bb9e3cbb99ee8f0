package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cleanMarkdownWrapper strips ```json fences that models sometimes wrap
// around their output despite instructions not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}

// parseJudgment extracts a yes/no relevance judgment from an LLM response.
// It first tries the requested JSON shape, then falls back to scanning for
// labeled lines and finally a bare leading yes/no.
func parseJudgment(content string) (JudgmentResponse, error) {
	cleaned := cleanMarkdownWrapper(content)

	var jsonResp struct {
		Relevant  *bool  `json:"relevant"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleaned), &jsonResp); err == nil && jsonResp.Relevant != nil {
		return JudgmentResponse{
			Relevant:  *jsonResp.Relevant,
			Reasoning: jsonResp.Reasoning,
		}, nil
	}

	// Fall back to line-oriented parsing
	var answer string
	var reasoning string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "ANSWER:"):
			answer = strings.ToLower(strings.TrimSpace(line[len("ANSWER:"):]))
		case strings.HasPrefix(upper, "RELEVANT:"):
			answer = strings.ToLower(strings.TrimSpace(line[len("RELEVANT:"):]))
		case strings.HasPrefix(upper, "REASONING:"):
			reasoning = strings.TrimSpace(line[len("REASONING:"):])
		}
	}

	if answer == "" {
		// Last resort: a response that simply starts with yes or no
		lower := strings.ToLower(cleaned)
		switch {
		case strings.HasPrefix(lower, "yes"):
			answer = "yes"
		case strings.HasPrefix(lower, "no"):
			answer = "no"
		}
	}

	switch answer {
	case "yes", "true":
		return JudgmentResponse{Relevant: true, Reasoning: reasoning}, nil
	case "no", "false":
		return JudgmentResponse{Relevant: false, Reasoning: reasoning}, nil
	}

	return JudgmentResponse{}, fmt.Errorf("unable to parse judgment response: %q", content)
}
