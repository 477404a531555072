package ai

import (
	"strings"

	"github.com/imovia/imovia-go/internal/domain"
)

// SanitizeTurns normalizes a conversation for turn-based providers, which
// reject malformed orderings outright. The result is empty or starts with a
// user turn, never holds two adjacent same-role turns (the later one wins),
// and is a subsequence of the input.
func SanitizeTurns(turns []domain.ChatTurn) []domain.ChatTurn {
	sanitized := make([]domain.ChatTurn, 0, len(turns))

	for _, turn := range turns {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			continue
		}

		if len(sanitized) == 0 {
			if turn.Role != domain.RoleUser {
				continue
			}
			sanitized = append(sanitized, turn)
			continue
		}

		if sanitized[len(sanitized)-1].Role == turn.Role {
			sanitized[len(sanitized)-1] = turn
			continue
		}

		sanitized = append(sanitized, turn)
	}

	return sanitized
}

// StripJSONFences removes a Markdown code-fence wrapper from raw provider
// output. Models frequently wrap JSON in ```json fences despite instructions.
func StripJSONFences(text string) string {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```json"))
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```"))
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	}

	return cleaned
}
