package state

import (
	"testing"

	"github.com/openquest/dungeonmaster/pkg/dice"
)

func TestNewCharacter(t *testing.T) {
	stats := Stats{
		Strength:     16,
		Dexterity:    14,
		Constitution: 15,
		Intelligence: 10,
		Wisdom:       12,
		Charisma:     8,
	}

	c, err := NewCharacter("Korga", "Warrior", stats)
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}

	if c.Level != 1 {
		t.Errorf("Level = %d, want 1", c.Level)
	}
	// Warrior base 12 + CON 15 modifier (+2)
	if c.MaxHP != 14 {
		t.Errorf("MaxHP = %d, want 14", c.MaxHP)
	}
	if c.HP != c.MaxHP {
		t.Errorf("HP = %d, want full %d", c.HP, c.MaxHP)
	}
	// 10 + DEX 14 modifier (+2)
	if c.AC != 12 {
		t.Errorf("AC = %d, want 12", c.AC)
	}
	if c.Actor == nil {
		t.Fatal("expected runtime actor to be built")
	}
	if str, ok := c.Attribute("strength"); !ok || str != 16 {
		t.Errorf("Attribute(strength) = %d, %v; want 16, true", str, ok)
	}
}

func TestNewCharacter_LowConstitutionFloor(t *testing.T) {
	// Mage base 6 with CON 1 (-5 modifier) would be 1 HP, never below.
	c, err := NewCharacter("Wisp", "Mage", Stats{Constitution: 1, Dexterity: 10})
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	if c.MaxHP != 1 {
		t.Errorf("MaxHP = %d, want floor of 1", c.MaxHP)
	}
}

func TestNewCharacter_Invalid(t *testing.T) {
	if _, err := NewCharacter("", "Warrior", Stats{}); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := NewCharacter("Korga", "Bard", Stats{}); err == nil {
		t.Error("expected error for unknown class")
	}
}

func TestAdjustHP_Clamping(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		delta    int
		expected int
	}{
		{"normal damage", 10, -4, 6},
		{"damage clamps at zero", 3, -10, 0},
		{"healing", 5, 3, 8},
		{"healing clamps at max", 9, 50, 10},
		{"zero delta", 7, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Character{HP: tt.start, MaxHP: 10}
			c.AdjustHP(tt.delta)
			if c.HP != tt.expected {
				t.Errorf("HP = %d, want %d", c.HP, tt.expected)
			}
		})
	}
}

func TestAddXP(t *testing.T) {
	c := &Character{}
	c.AddXP(50)
	c.AddXP(25)
	c.AddXP(-10) // ignored
	if c.XP != 75 {
		t.Errorf("XP = %d, want 75", c.XP)
	}
}

func TestRollStats(t *testing.T) {
	stats := RollStats(dice.NewSeededRoller(7))

	for name, score := range map[string]int{
		"Strength":     stats.Strength,
		"Dexterity":    stats.Dexterity,
		"Constitution": stats.Constitution,
		"Intelligence": stats.Intelligence,
		"Wisdom":       stats.Wisdom,
		"Charisma":     stats.Charisma,
	} {
		if score < 3 || score > 18 {
			t.Errorf("%s = %d, out of range [3,18]", name, score)
		}
	}
}
