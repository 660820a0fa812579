// Package dice parses and evaluates dice notation of the form NdS+M.
package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultCount = 1
	DefaultSides = 20
)

// ErrInvalidNotation is returned by Parse when the notation does not match
// the NdS+M grammar. Parse still returns usable defaults (1d20), so callers
// may treat the error as advisory and log it. This is the lenient policy:
// a garbled notation from the model degrades to a d20 roll rather than
// stalling the game.
var ErrInvalidNotation = errors.New("invalid dice notation")

var notationRe = regexp.MustCompile(`^(?i)(\d*)d(\d+)([+-]\d+)?$`)

// Parsed is the decomposed form of a dice notation string.
type Parsed struct {
	Count    int    `json:"count"`
	Sides    int    `json:"sides"`
	Modifier int    `json:"modifier"`
	Raw      string `json:"raw"`
}

// Parse decomposes notation like "1d20", "2d6+3" or "4d6-2".
// Count defaults to 1 when omitted. On a grammar mismatch it returns
// the 1d20 fallback together with ErrInvalidNotation.
func Parse(notation string) (Parsed, error) {
	m := notationRe.FindStringSubmatch(strings.TrimSpace(notation))
	if m == nil {
		return Parsed{Count: DefaultCount, Sides: DefaultSides, Raw: notation},
			fmt.Errorf("%w: %q", ErrInvalidNotation, notation)
	}

	p := Parsed{Count: DefaultCount, Raw: notation}
	if m[1] != "" {
		p.Count, _ = strconv.Atoi(m[1])
		if p.Count < 1 {
			p.Count = DefaultCount
		}
	}
	p.Sides, _ = strconv.Atoi(m[2])
	if p.Sides < 1 {
		p.Sides = DefaultSides
	}
	if m[3] != "" {
		p.Modifier, _ = strconv.Atoi(m[3])
	}
	return p, nil
}

// Result is the outcome of evaluating a dice notation.
type Result struct {
	Notation  string `json:"notation"`
	Total     int    `json:"total"`
	Rolls     []int  `json:"rolls"`
	Modifier  int    `json:"modifier,omitempty"`
	Breakdown string `json:"breakdown"` // e.g. "2d6[3,4]+1=8"
}

// Roller evaluates dice notation. Implementations with a fixed source
// exist for deterministic tests.
type Roller interface {
	Roll(notation string) Result
}

type randomRoller struct {
	rng *rand.Rand
}

// NewRoller returns a Roller backed by a time-seeded source.
func NewRoller() Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRoller returns a Roller with a fixed seed.
func NewSeededRoller(seed int64) Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *randomRoller) Roll(notation string) Result {
	p, _ := Parse(notation)

	rolls := make([]int, 0, p.Count)
	sum := 0
	for i := 0; i < p.Count; i++ {
		n := r.rng.Intn(p.Sides) + 1
		rolls = append(rolls, n)
		sum += n
	}

	return Result{
		Notation:  p.Raw,
		Total:     sum + p.Modifier,
		Rolls:     rolls,
		Modifier:  p.Modifier,
		Breakdown: breakdown(p, rolls, sum+p.Modifier),
	}
}

func breakdown(p Parsed, rolls []int, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dd%d[", p.Count, p.Sides)
	for i, n := range rolls {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(strconv.Itoa(n))
	}
	sb.WriteString("]")
	if p.Modifier > 0 {
		fmt.Fprintf(&sb, "+%d", p.Modifier)
	} else if p.Modifier < 0 {
		fmt.Fprintf(&sb, "%d", p.Modifier)
	}
	fmt.Fprintf(&sb, "=%d", total)
	return sb.String()
}

// Modifier is the D&D ability modifier: floor((score-10)/2), no clamping.
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		// integer division truncates toward zero; shift for floor
		return (d - 1) / 2
	}
	return d / 2
}

var dcRe = regexp.MustCompile(`(?i)DC\s*(\d+)`)

// DefaultDC is assumed when a roll reason carries no explicit difficulty.
const DefaultDC = 10

// Difficulty is a bucketed difficulty class.
type Difficulty struct {
	Label string `json:"label"`
	DC    int    `json:"dc"`
}

// Classify buckets a DC into a difficulty label. When dc is zero, the DC is
// extracted from free text ("DC 15") or defaults to DefaultDC.
func Classify(reason string, dc int) Difficulty {
	if dc == 0 {
		if m := dcRe.FindStringSubmatch(reason); m != nil {
			dc, _ = strconv.Atoi(m[1])
		} else {
			dc = DefaultDC
		}
	}

	switch {
	case dc <= 10:
		return Difficulty{Label: "Easy", DC: dc}
	case dc <= 15:
		return Difficulty{Label: "Medium", DC: dc}
	case dc <= 20:
		return Difficulty{Label: "Hard", DC: dc}
	default:
		return Difficulty{Label: "Very Hard", DC: dc}
	}
}

// RollAbilityScore rolls 4d6 and drops the lowest die, the standard
// method for generating an ability score.
func RollAbilityScore(r Roller) int {
	res := r.Roll("4d6")
	lowest := res.Rolls[0]
	for _, n := range res.Rolls[1:] {
		if n < lowest {
			lowest = n
		}
	}
	return res.Total - lowest
}

var dieNames = map[int]string{
	4:   "d4 (Pyramid)",
	6:   "d6 (Cube)",
	8:   "d8 (Octahedron)",
	10:  "d10 (Pentagonal)",
	12:  "d12 (Dodecahedron)",
	20:  "d20 (Icosahedron)",
	100: "d100 (Percentile)",
}

// TypeName is the display name for a die with the given number of sides.
func TypeName(sides int) string {
	if name, ok := dieNames[sides]; ok {
		return name
	}
	return fmt.Sprintf("d%d", sides)
}
