package scenario

import (
	"strings"
	"testing"
)

func TestPickRandom_AlwaysResolvable(t *testing.T) {
	// Every id PickRandom can return must resolve through ByID.
	for i := 0; i < 200; i++ {
		s := PickRandom()
		found, ok := ByID(s.ID)
		if !ok {
			t.Fatalf("PickRandom returned orphan id %q", s.ID)
		}
		if found.Name != s.Name {
			t.Fatalf("ByID(%q) returned %q, want %q", s.ID, found.Name, s.Name)
		}
	}
}

func TestByID_NotFound(t *testing.T) {
	if _, ok := ByID("no-such-scenario"); ok {
		t.Error("expected lookup miss for unknown id")
	}
}

func TestTableIntegrity(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range All() {
		if s.ID == "" || s.Name == "" || s.Location == "" || s.Opening == "" || s.Atmosphere == "" {
			t.Errorf("scenario %q has empty fields", s.ID)
		}
		if seen[s.ID] {
			t.Errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true

		switch s.TimeOfDay {
		case Dawn, Day, Dusk, Night:
		default:
			t.Errorf("scenario %q has invalid time of day %q", s.ID, s.TimeOfDay)
		}
	}
}

func TestFormat(t *testing.T) {
	s, ok := ByID("goblin-ambush")
	if !ok {
		t.Fatal("goblin-ambush scenario missing")
	}

	text := Format(s.Opening, "Korga", "Warrior")
	if strings.Contains(text, "{name}") || strings.Contains(text, "{class}") {
		t.Errorf("placeholders not substituted: %q", text)
	}
	if !strings.Contains(text, "Korga the Warrior") {
		t.Errorf("expected formatted greeting, got %q", text)
	}
}

func TestFormat_RepeatedPlaceholders(t *testing.T) {
	out := Format("{name} and {name} the {class}", "Iris", "Rogue")
	if out != "Iris and Iris the Rogue" {
		t.Errorf("Format = %q", out)
	}
}
