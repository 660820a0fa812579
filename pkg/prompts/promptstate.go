package prompts

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openquest/dungeonmaster/pkg/state"
)

var titleCaser = cases.Title(language.English)

// PromptCharacter is the character sheet as the model sees it.
type PromptCharacter struct {
	Name  string      `json:"name"`
	Class string      `json:"class"`
	Level int         `json:"level"`
	HP    int         `json:"hp"`
	MaxHP int         `json:"max_hp"`
	XP    int         `json:"xp"`
	AC    int         `json:"ac"`
	Stats state.Stats `json:"stats"`
}

// PromptEnemy omits internal ids from the combat roster.
type PromptEnemy struct {
	Name   string `json:"name"`
	HP     int    `json:"hp"`
	MaxHP  int    `json:"max_hp"`
	Status string `json:"status"`
}

// PromptState is the reduced game state serialized into the system
// prompt. Ephemeral fields and ids are left out; the model only needs
// what it can narrate about.
type PromptState struct {
	Character *PromptCharacter `json:"character,omitempty"`
	Inventory []string         `json:"inventory,omitempty"`
	Gold      int              `json:"gold"`
	Location  string           `json:"location,omitempty"`
	TimeOfDay string           `json:"time_of_day,omitempty"`
	InCombat  bool             `json:"in_combat"`
	Enemies   []PromptEnemy    `json:"enemies,omitempty"`
	Turn      int              `json:"combat_turn,omitempty"`
}

// ToPromptState reduces the full game state for LLM consumption.
func ToPromptState(gs *state.GameState) *PromptState {
	ps := &PromptState{
		Inventory: gs.Inventory,
		Gold:      gs.Gold,
		Location:  gs.Location,
		TimeOfDay: titleCaser.String(string(gs.TimeOfDay)),
		InCombat:  gs.Combat.Active,
		Turn:      gs.Combat.Turn,
	}

	if gs.Character != nil {
		c := gs.Character
		ps.Character = &PromptCharacter{
			Name:  c.Name,
			Class: titleCaser.String(c.Class),
			Level: c.Level,
			HP:    c.HP,
			MaxHP: c.MaxHP,
			XP:    c.XP,
			AC:    c.AC,
			Stats: c.Stats,
		}
	}

	for _, e := range gs.Combat.Enemies {
		ps.Enemies = append(ps.Enemies, PromptEnemy{
			Name:   e.Name,
			HP:     e.HP,
			MaxHP:  e.MaxHP,
			Status: string(e.Status),
		})
	}

	return ps
}
