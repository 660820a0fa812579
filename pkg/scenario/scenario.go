// Package scenario holds the fixed table of starting scenarios a new
// adventure can open with.
package scenario

import (
	"math/rand"
	"strings"
)

// TimeOfDay is the in-world time a scenario opens at.
type TimeOfDay string

const (
	Dawn  TimeOfDay = "Dawn"
	Day   TimeOfDay = "Day"
	Dusk  TimeOfDay = "Dusk"
	Night TimeOfDay = "Night"
)

// Scenario is a starting narrative template plus setting metadata.
// Immutable after creation; the Atmosphere string is injected into the
// system prompt sent to the language model.
type Scenario struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	TimeOfDay  TimeOfDay `json:"time_of_day"`
	Opening    string    `json:"opening"`    // opening text with {name} and {class} placeholders
	Atmosphere string    `json:"atmosphere"` // setting description for the model's context
}

// PickRandom returns a random starting scenario.
func PickRandom() Scenario {
	return startingScenarios[rand.Intn(len(startingScenarios))]
}

// ByID looks up a scenario by its id.
func ByID(id string) (Scenario, bool) {
	for _, s := range startingScenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// All returns a copy of the scenario table.
func All() []Scenario {
	out := make([]Scenario, len(startingScenarios))
	copy(out, startingScenarios)
	return out
}

// Format substitutes the {name} and {class} placeholders in scenario text.
func Format(text, name, class string) string {
	text = strings.ReplaceAll(text, "{name}", name)
	return strings.ReplaceAll(text, "{class}", class)
}
