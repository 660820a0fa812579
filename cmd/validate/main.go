// Command validate lints the built-in scenario and class tables for
// authoring mistakes: duplicate ids, missing fields, placeholders that
// would leak into the opening narration.
package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/openquest/dungeonmaster/pkg/scenario"
	"github.com/openquest/dungeonmaster/pkg/state"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func main() {
	v := &validator{}
	v.checkScenarios()
	v.checkClasses()

	if len(v.errors) > 0 {
		for _, e := range v.errors {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", e)
		}
		fmt.Fprintf(os.Stderr, "\n%d problem(s) found\n", len(v.errors))
		os.Exit(1)
	}

	fmt.Printf("Checked %d scenarios and %d classes: all valid\n",
		len(scenario.All()), len(state.Classes))
}

type validator struct {
	errors []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) checkScenarios() {
	seen := make(map[string]bool)

	for _, s := range scenario.All() {
		label := s.ID
		if label == "" {
			label = s.Name
		}

		if s.ID == "" {
			v.errorf("scenario %q has no id", s.Name)
		} else if !idPattern.MatchString(s.ID) {
			v.errorf("scenario id %q must be lowercase kebab-case", s.ID)
		}
		if seen[s.ID] {
			v.errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true

		if s.Name == "" {
			v.errorf("scenario %q has no name", label)
		}
		if s.Location == "" {
			v.errorf("scenario %q has no location", label)
		}
		if s.Atmosphere == "" {
			v.errorf("scenario %q has no atmosphere", label)
		}

		switch s.TimeOfDay {
		case scenario.Dawn, scenario.Day, scenario.Dusk, scenario.Night:
		default:
			v.errorf("scenario %q has invalid time of day %q", label, s.TimeOfDay)
		}

		v.checkOpening(label, s.Opening)
	}

	if len(seen) == 0 {
		v.errorf("scenario table is empty")
	}
}

func (v *validator) checkOpening(label, opening string) {
	if opening == "" {
		v.errorf("scenario %q has no opening", label)
		return
	}
	if !strings.Contains(opening, "{name}") {
		v.errorf("scenario %q opening never mentions the character ({name} missing)", label)
	}

	// Substituting both placeholders must leave no braces behind
	rendered := scenario.Format(opening, "Test", "Warrior")
	if strings.ContainsAny(rendered, "{}") {
		v.errorf("scenario %q opening has an unknown placeholder: %s", label, rendered)
	}
}

func (v *validator) checkClasses() {
	if len(state.Classes) == 0 {
		v.errorf("class table is empty")
		return
	}

	for name, info := range state.Classes {
		if name == "" {
			v.errorf("class with empty name")
		}
		if info.BaseHP <= 0 {
			v.errorf("class %q has non-positive base HP %d", name, info.BaseHP)
		}
		if len(info.Items) == 0 {
			v.errorf("class %q has no starting kit", name)
		}
		for _, item := range info.Items {
			if strings.TrimSpace(item) == "" {
				v.errorf("class %q has a blank item in its kit", name)
			}
		}
	}
}
