package state

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/openquest/dungeonmaster/pkg/chat"
	"github.com/openquest/dungeonmaster/pkg/scenario"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testScenario() scenario.Scenario {
	return scenario.Scenario{
		ID:         "forest-ambush",
		Name:       "Ambush on the Forest Road",
		Location:   "Forest Road",
		TimeOfDay:  scenario.Dusk,
		Opening:    "The cart ahead of you has stopped.",
		Atmosphere: "tense, shadowed",
	}
}

// fakePersister records calls for write-through assertions.
type fakePersister struct {
	saves   []*SavedGame
	deletes []uuid.UUID
	saveErr error
}

func (f *fakePersister) SaveGame(ctx context.Context, sg *SavedGame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves = append(f.saves, sg)
	return nil
}

func (f *fakePersister) DeleteGame(_ context.Context, id uuid.UUID) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func TestStoreStartGame(t *testing.T) {
	s := newStartedStore(t)

	if !s.Started() {
		t.Error("Started() = false after StartGame")
	}
	gs := s.Snapshot().GameState
	if gs.Character == nil || gs.Character.Name != "Theron" {
		t.Fatalf("character not installed: %+v", gs.Character)
	}
	if gs.Gold != StartingGold {
		t.Errorf("Gold = %d, want %d", gs.Gold, StartingGold)
	}
	if gs.Location != "Forest Road" || gs.ScenarioID != "forest-ambush" {
		t.Errorf("scenario not installed: location=%q scenario=%q", gs.Location, gs.ScenarioID)
	}
	// Cleric starting kit.
	want := []string{"Mace", "Scale Mail", "Holy Symbol"}
	if len(gs.Inventory) != len(want) {
		t.Fatalf("Inventory = %v, want %v", gs.Inventory, want)
	}
	for i, item := range want {
		if gs.Inventory[i] != item {
			t.Errorf("Inventory[%d] = %q, want %q", i, gs.Inventory[i], item)
		}
	}
}

func TestStoreGoldFloor(t *testing.T) {
	s := newStartedStore(t)
	s.UpdateGold(-StartingGold - 100)
	if got := s.Snapshot().GameState.Gold; got != 0 {
		t.Errorf("Gold = %d, want floor at 0", got)
	}
}

func TestStoreUpdateHP_NoCharacter(t *testing.T) {
	s := NewStore(uuid.New(), testLogger())
	// Must not panic; tag before character creation is a no-op.
	s.UpdateHP(-5)
}

func TestStoreRemoveItem(t *testing.T) {
	s := newStartedStore(t)
	s.AddItem("Torch")
	s.AddItem("Torch")

	if !s.RemoveItem("torch") {
		t.Fatal("RemoveItem(torch) = false, want case-insensitive match")
	}
	count := 0
	for _, item := range s.Snapshot().GameState.Inventory {
		if item == "Torch" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("found %d Torch entries, want 1 (only first match removed)", count)
	}

	if s.RemoveItem("Vorpal Sword") {
		t.Error("RemoveItem of absent item = true, want false")
	}
}

func TestStoreCombatLifecycle(t *testing.T) {
	s := newStartedStore(t)

	e := s.AddEnemy("Goblin Archer", 7)
	if e.ID == "" || e.HP != 7 || e.Status != EnemyAlive {
		t.Fatalf("AddEnemy() = %+v", e)
	}
	gs := s.Snapshot().GameState
	if !gs.Combat.Active || gs.Combat.Turn != 1 {
		t.Errorf("combat = %+v, want active at turn 1", gs.Combat)
	}

	s.AddEnemy("Goblin Chief", 12)
	s.AddEnemy("Wolf", 9)

	// Fuzzy fragment hits both goblins.
	if n := s.DamageEnemy("goblin", 3); n != 2 {
		t.Errorf("DamageEnemy(goblin) matched %d, want 2", n)
	}
	if n := s.DamageEnemy("dragon", 3); n != 0 {
		t.Errorf("DamageEnemy(dragon) matched %d, want 0", n)
	}

	if n := s.DefeatEnemy("wolf"); n != 1 {
		t.Errorf("DefeatEnemy(wolf) matched %d, want 1", n)
	}
	for _, enemy := range s.Snapshot().GameState.Combat.Enemies {
		if enemy.Name == "Wolf" && !enemy.IsDefeated() {
			t.Error("Wolf should be defeated")
		}
	}

	s.AdvanceTurn()
	if got := s.Snapshot().GameState.Combat.Turn; got != 2 {
		t.Errorf("Turn = %d, want 2", got)
	}

	s.EndCombat()
	if s.Snapshot().GameState.Combat.Active {
		t.Error("combat still active after EndCombat")
	}
}

func TestStoreMessages(t *testing.T) {
	s := newStartedStore(t)

	m1 := chat.NewMessage(chat.ChatRoleUser, "I open the door.")
	m2 := chat.NewMessage(chat.ChatRoleAgent, "")
	s.AppendMessage(m1)
	s.AppendMessage(m2)

	if !s.UpdateMessageContent(m2.ID, "It creaks open.") {
		t.Fatal("UpdateMessageContent returned false for known id")
	}
	if s.UpdateMessageContent("nope", "x") {
		t.Error("UpdateMessageContent returned true for unknown id")
	}

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Content != "I open the door." || msgs[1].Content != "It creaks open." {
		t.Errorf("messages out of order or stale: %+v", msgs)
	}
}

func TestStorePendingRoll(t *testing.T) {
	s := newStartedStore(t)

	if _, ok := s.PendingRoll(); ok {
		t.Fatal("unexpected pending roll on fresh store")
	}

	s.SetPendingRoll("1d20", "Perception check")
	s.SetPendingRoll("2d6", "Damage roll")

	pr, ok := s.PendingRoll()
	if !ok || pr.Dice != "2d6" {
		t.Errorf("PendingRoll() = %+v, %v; want latest request to replace", pr, ok)
	}

	cleared, ok := s.ClearPendingRoll()
	if !ok || cleared.Dice != "2d6" {
		t.Errorf("ClearPendingRoll() = %+v, %v", cleared, ok)
	}
	if _, ok := s.ClearPendingRoll(); ok {
		t.Error("second clear should report nothing pending")
	}
}

func TestStorePersistence(t *testing.T) {
	fp := &fakePersister{}
	s := NewStore(uuid.New(), testLogger()).WithPersister(fp)

	c, err := NewCharacter("Theron", "Cleric", Stats{Constitution: 10, Dexterity: 10})
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	s.StartGame(c, testScenario())
	s.UpdateHP(-2)
	s.SetPendingRoll("1d20", "never persisted")

	if len(fp.saves) < 2 {
		t.Fatalf("got %d saves, want a write per mutation", len(fp.saves))
	}
	last := fp.saves[len(fp.saves)-1]
	if last.Version != SaveVersion {
		t.Errorf("Version = %d, want %d", last.Version, SaveVersion)
	}
	if last.GameState.Character.HP != 8 {
		t.Errorf("persisted HP = %d, want 8", last.GameState.Character.HP)
	}
	if last.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set on save")
	}
}

func TestStorePersistFailureDoesNotBlockPlay(t *testing.T) {
	fp := &fakePersister{saveErr: context.DeadlineExceeded}
	s := newStartedStore(t)
	s.WithPersister(fp)

	s.UpdateGold(5)
	if got := s.Snapshot().GameState.Gold; got != 15 {
		t.Errorf("Gold = %d, want in-memory update despite save failure", got)
	}
}

func TestStoreSnapshotIsolation(t *testing.T) {
	s := newStartedStore(t)
	snap := s.Snapshot()
	snap.GameState.Gold = 9999
	snap.GameState.Inventory = append(snap.GameState.Inventory, "Forged Deed")

	gs := s.Snapshot().GameState
	if gs.Gold == 9999 {
		t.Error("snapshot mutation leaked gold into the store")
	}
	for _, item := range gs.Inventory {
		if item == "Forged Deed" {
			t.Error("snapshot mutation leaked inventory into the store")
		}
	}
}

func TestStoreSnapshotCarriesActor(t *testing.T) {
	s := newStartedStore(t)
	c := s.Snapshot().GameState.Character
	if c.Actor == nil {
		t.Fatal("snapshot character has no runtime actor")
	}
	if v, ok := c.Attribute("wisdom"); !ok || v != 14 {
		t.Errorf("Attribute(wisdom) = %d, %v; want 14", v, ok)
	}
}

func TestStoreLoad(t *testing.T) {
	s := newStartedStore(t)
	s.UpdateHP(-3)
	s.SetPendingRoll("1d20", "stale")
	saved := s.Snapshot()

	fresh := NewStore(uuid.New(), testLogger())
	if err := fresh.Load(saved); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if fresh.ID() != s.ID() {
		t.Errorf("ID = %s, want %s", fresh.ID(), s.ID())
	}
	gs := fresh.Snapshot().GameState
	if gs.Character.HP != 7 {
		t.Errorf("HP = %d, want 7", gs.Character.HP)
	}
	if gs.Character.Actor == nil {
		t.Error("runtime actor not rebuilt on load")
	}
	if _, ok := fresh.PendingRoll(); ok {
		t.Error("pending roll survived a load; it is ephemeral")
	}

	if err := fresh.Load(nil); err == nil {
		t.Error("Load(nil) should error")
	}
}

func TestStoreReset(t *testing.T) {
	fp := &fakePersister{}
	s := newStartedStore(t)
	s.WithPersister(fp)
	s.AppendMessage(chat.NewMessage(chat.ChatRoleUser, "hello"))

	s.Reset()

	if s.Started() {
		t.Error("Started() = true after reset")
	}
	gs := s.Snapshot().GameState
	if gs.Character != nil || gs.Gold != 0 {
		t.Errorf("state not reinitialized: %+v", gs)
	}
	if len(s.Messages()) != 0 {
		t.Error("messages survived reset")
	}
	if len(fp.deletes) != 1 {
		t.Errorf("got %d deletes, want 1", len(fp.deletes))
	}
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore(uuid.New(), testLogger())
	var events []EventType
	s.Subscribe(func(ev Event) { events = append(events, ev.Type) })

	c, err := NewCharacter("Theron", "Cleric", Stats{Constitution: 10})
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	s.StartGame(c, testScenario())
	s.UpdateGold(1)

	if len(events) != 2 || events[0] != EventGameStarted || events[1] != EventGoldUpdated {
		t.Errorf("events = %v, want [game.started gold.updated]", events)
	}
}
