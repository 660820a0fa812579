package prompts

import (
	"strings"
	"testing"

	"github.com/openquest/dungeonmaster/pkg/scenario"
	"github.com/openquest/dungeonmaster/pkg/state"
)

func testGameState(t *testing.T) *state.GameState {
	t.Helper()
	c, err := state.NewCharacter("Korga", "Warrior", state.Stats{
		Strength: 16, Dexterity: 12, Constitution: 14,
		Intelligence: 8, Wisdom: 10, Charisma: 10,
	})
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	gs := state.NewGameState()
	gs.Character = c
	gs.Inventory = []string{"Longsword", "Rope"}
	gs.Gold = 25
	gs.Location = "The Prancing Pony"
	gs.TimeOfDay = scenario.Night
	gs.Atmosphere = "smoky, crowded, suspicious glances"
	return gs
}

func TestBuildSystemPrompt(t *testing.T) {
	gs := testGameState(t)
	prompt, err := BuildSystemPrompt(gs)
	if err != nil {
		t.Fatalf("BuildSystemPrompt() error = %v", err)
	}

	for _, want := range []string{
		"Dungeon Master",
		"The Prancing Pony",
		"SCENARIO CONTEXT: smoky, crowded, suspicious glances",
		"[ROLL:dice_notation:reason]",
		"[HP:n]",
		"[ITEM:remove:name]",
		`"name":"Korga"`,
		`"gold":25`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt_Defaults(t *testing.T) {
	gs := state.NewGameState()
	prompt, err := BuildSystemPrompt(gs)
	if err != nil {
		t.Fatalf("BuildSystemPrompt() error = %v", err)
	}
	if !strings.Contains(prompt, "a fantasy realm") {
		t.Error("expected fallback location")
	}
	if strings.Contains(prompt, "SCENARIO CONTEXT") {
		t.Error("atmosphere block present without atmosphere")
	}
}

func TestToPromptState(t *testing.T) {
	gs := testGameState(t)
	gs.Combat = state.CombatState{
		Active: true,
		Turn:   3,
		Enemies: []state.Enemy{
			{ID: "abc-123", Name: "Goblin", HP: 4, MaxHP: 7, Status: state.EnemyAlive},
		},
	}

	ps := ToPromptState(gs)
	if ps.Character == nil || ps.Character.Class != "Warrior" {
		t.Fatalf("character = %+v", ps.Character)
	}
	if ps.TimeOfDay != "Night" {
		t.Errorf("TimeOfDay = %q, want title-cased Night", ps.TimeOfDay)
	}
	if !ps.InCombat || ps.Turn != 3 {
		t.Errorf("combat = in_combat=%v turn=%d", ps.InCombat, ps.Turn)
	}
	if len(ps.Enemies) != 1 || ps.Enemies[0].Name != "Goblin" {
		t.Fatalf("enemies = %+v", ps.Enemies)
	}
}
