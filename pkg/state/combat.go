package state

import "strings"

// EnemyStatus is the lifecycle state of an enemy in combat.
type EnemyStatus string

const (
	EnemyAlive    EnemyStatus = "alive"
	EnemyDefeated EnemyStatus = "defeated"
)

// Enemy is a combatant tracked during an encounter. Status is defeated
// whenever HP reaches 0.
type Enemy struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	HP     int         `json:"hp"`
	MaxHP  int         `json:"max_hp"`
	Status EnemyStatus `json:"status"`
}

// TakeDamage reduces the enemy's HP, clamping at 0 and marking the
// enemy defeated when it drops to 0.
func (e *Enemy) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	e.HP -= n
	if e.HP <= 0 {
		e.HP = 0
		e.Status = EnemyDefeated
	}
}

// Defeat marks the enemy defeated regardless of remaining HP.
func (e *Enemy) Defeat() {
	e.HP = 0
	e.Status = EnemyDefeated
}

// IsDefeated returns true if the enemy is out of the fight.
func (e *Enemy) IsDefeated() bool {
	return e.Status == EnemyDefeated || e.HP <= 0
}

// Matches reports whether a name fragment refers to this enemy. The
// model rarely repeats the exact stored name, so matching is
// case-insensitive substring containment in both directions
// ("goblin" matches "Goblin Archer" and vice versa). Ambiguous
// fragments may match several enemies; callers apply to all matches.
func (e *Enemy) Matches(fragment string) bool {
	a := strings.ToLower(strings.TrimSpace(fragment))
	b := strings.ToLower(e.Name)
	if a == "" {
		return false
	}
	return strings.Contains(b, a) || strings.Contains(a, b)
}

// CombatState tracks an active encounter.
type CombatState struct {
	Active  bool    `json:"is_active"`
	Enemies []Enemy `json:"enemies,omitempty"`
	Turn    int     `json:"turn"`
}
