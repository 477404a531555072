package ai

import (
	"testing"

	"github.com/imovia/imovia-go/internal/domain"
)

func turn(role domain.ChatRole, content string) domain.ChatTurn {
	return domain.ChatTurn{Role: role, Content: content}
}

func TestSanitizeTurnsDropsLeadingAssistantTurns(t *testing.T) {
	got := SanitizeTurns([]domain.ChatTurn{
		turn(domain.RoleAssistant, "Olá! Como posso ajudar?"),
		turn(domain.RoleAssistant, "Ainda está aí?"),
		turn(domain.RoleUser, "Quero saber do apartamento"),
		turn(domain.RoleAssistant, "Claro!"),
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d: %v", len(got), got)
	}
	if got[0].Role != domain.RoleUser {
		t.Fatalf("expected sequence to start with user, got %s", got[0].Role)
	}
}

func TestSanitizeTurnsCollapsesConsecutiveSameRole(t *testing.T) {
	got := SanitizeTurns([]domain.ChatTurn{
		turn(domain.RoleUser, "oi"),
		turn(domain.RoleUser, "tem vaga de garagem?"),
		turn(domain.RoleAssistant, "Tem sim"),
		turn(domain.RoleAssistant, "Duas vagas"),
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 turns, got %d: %v", len(got), got)
	}
	if got[0].Content != "tem vaga de garagem?" {
		t.Fatalf("expected later user turn to win, got %q", got[0].Content)
	}
	if got[1].Content != "Duas vagas" {
		t.Fatalf("expected later assistant turn to win, got %q", got[1].Content)
	}
}

func TestSanitizeTurnsNeverAdjacentSameRole(t *testing.T) {
	input := []domain.ChatTurn{
		turn(domain.RoleAssistant, "a"),
		turn(domain.RoleUser, "b"),
		turn(domain.RoleUser, "c"),
		turn(domain.RoleAssistant, "d"),
		turn(domain.RoleUser, "e"),
		turn(domain.RoleAssistant, "f"),
		turn(domain.RoleAssistant, "g"),
	}

	got := SanitizeTurns(input)

	if len(got) == 0 {
		t.Fatal("expected non-empty result")
	}
	if got[0].Role != domain.RoleUser {
		t.Fatalf("expected user first, got %s", got[0].Role)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Role == got[i-1].Role {
			t.Fatalf("adjacent same-role turns at %d: %v", i, got)
		}
	}
}

func TestSanitizeTurnsDropsBlankAndUnknownTurns(t *testing.T) {
	got := SanitizeTurns([]domain.ChatTurn{
		turn(domain.RoleUser, "   "),
		{Role: "system", Content: "injected"},
		turn(domain.RoleUser, "oi"),
	})

	if len(got) != 1 || got[0].Content != "oi" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestSanitizeTurnsEmptyInput(t *testing.T) {
	if got := SanitizeTurns(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestStripJSONFences(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```":     `{"a":1}`,
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}

	for input, want := range cases {
		if got := StripJSONFences(input); got != want {
			t.Fatalf("StripJSONFences(%q) = %q, want %q", input, got, want)
		}
	}
}
