package state

import (
	"fmt"

	"github.com/jwebster45206/d20"

	"github.com/openquest/dungeonmaster/pkg/dice"
)

// Stats are the six core ability scores.
type Stats struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats to a map for d20.Actor compatibility.
func (s Stats) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// ClassInfo is per-class creation data: base hit points and the
// starting kit placed in the inventory.
type ClassInfo struct {
	BaseHP int      `json:"base_hp"`
	Items  []string `json:"items"`
}

// Classes a character can be created as.
var Classes = map[string]ClassInfo{
	"Warrior": {BaseHP: 12, Items: []string{"Longsword", "Chain Mail", "Shield"}},
	"Mage":    {BaseHP: 6, Items: []string{"Staff", "Robes", "Spellbook"}},
	"Rogue":   {BaseHP: 8, Items: []string{"Daggers (2)", "Leather Armor", "Thieves Tools"}},
	"Cleric":  {BaseHP: 10, Items: []string{"Mace", "Scale Mail", "Holy Symbol"}},
}

// StartingGold every new character begins with.
const StartingGold = 10

// Character is the player character sheet. It is mutated only through
// the Store's update operations. The d20 Actor is built at creation and
// rebuilt on load; it is not serialized.
type Character struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Level int    `json:"level"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
	XP    int    `json:"xp"`
	AC    int    `json:"ac"`
	Stats Stats  `json:"stats"`

	Actor *d20.Actor `json:"-"`
}

// NewCharacter creates a level 1 character. MaxHP is the class base HP
// plus the constitution modifier (minimum 1); AC is 10 plus the
// dexterity modifier.
func NewCharacter(name, class string, stats Stats) (*Character, error) {
	if name == "" {
		return nil, fmt.Errorf("character name cannot be empty")
	}
	info, ok := Classes[class]
	if !ok {
		return nil, fmt.Errorf("unknown class: %q", class)
	}

	maxHP := info.BaseHP + dice.Modifier(stats.Constitution)
	if maxHP < 1 {
		maxHP = 1
	}

	c := &Character{
		Name:  name,
		Class: class,
		Level: 1,
		HP:    maxHP,
		MaxHP: maxHP,
		AC:    10 + dice.Modifier(stats.Dexterity),
		Stats: stats,
	}
	if err := c.BuildActor(); err != nil {
		return nil, err
	}
	return c, nil
}

// RollStats generates a full set of ability scores, 4d6 drop lowest
// for each.
func RollStats(r dice.Roller) Stats {
	return Stats{
		Strength:     dice.RollAbilityScore(r),
		Dexterity:    dice.RollAbilityScore(r),
		Constitution: dice.RollAbilityScore(r),
		Intelligence: dice.RollAbilityScore(r),
		Wisdom:       dice.RollAbilityScore(r),
		Charisma:     dice.RollAbilityScore(r),
	}
}

// BuildActor constructs the runtime d20 actor from the sheet. Called at
// creation and again after loading a saved game.
func (c *Character) BuildActor() error {
	actor, err := d20.NewActor(c.Name).
		WithHP(c.MaxHP).
		WithAC(c.AC).
		WithAttributes(c.Stats.ToAttributes()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build actor: %w", err)
	}
	c.Actor = actor
	return nil
}

// AdjustHP applies a signed HP delta, clamped to [0, MaxHP].
func (c *Character) AdjustHP(delta int) {
	c.HP += delta
	if c.HP < 0 {
		c.HP = 0
	}
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// AddXP adds experience. XP has no cap; negative amounts are ignored.
func (c *Character) AddXP(n int) {
	if n <= 0 {
		return
	}
	c.XP += n
}

// Attribute looks up an ability score by its d20 attribute key.
func (c *Character) Attribute(key string) (int, bool) {
	if c.Actor == nil {
		return 0, false
	}
	return c.Actor.Attribute(key)
}
