package engine

import (
	"errors"
	"testing"

	"github.com/wricardo/mcp-training/boxpush/game/catalog"
)

// createTestCatalog returns a two level catalog:
//
//	level 0: player (3,3), box (4,3), target (6,3) on an 8x8 grid
//	level 1: player (0,0), box (0,1), target (0,3) on a 1x4 strip
func createTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	grid := make([][]catalog.Cell, 8)
	for r := range grid {
		grid[r] = make([]catalog.Cell, 8)
	}
	grid[3][3] = catalog.CellPlayer
	grid[4][3] = catalog.CellBox
	grid[6][3] = catalog.CellTarget

	cat, err := catalog.New([]catalog.LevelDefinition{
		{Name: "Straight Down", Grid: grid},
		{Name: "Strip", Grid: [][]catalog.Cell{{1, 2, 0, 3}}},
	})
	if err != nil {
		t.Fatalf("Failed to build test catalog: %v", err)
	}
	return cat
}

func kinds(outcomes []Outcome) []OutcomeKind {
	result := make([]OutcomeKind, len(outcomes))
	for i, o := range outcomes {
		result[i] = o.Kind
	}
	return result
}

func expectKinds(t *testing.T, outcomes []Outcome, expected ...OutcomeKind) {
	t.Helper()
	got := kinds(outcomes)
	if len(got) != len(expected) {
		t.Fatalf("Expected outcomes %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Expected outcomes %v, got %v", expected, got)
		}
	}
}

func TestNew(t *testing.T) {
	e := New(createTestCatalog(t))

	if e.State() != StateUninitialized {
		t.Errorf("Expected uninitialized state, got %s", e.State())
	}
	if e.CurrentLevelIndex() != -1 {
		t.Errorf("Expected level index -1, got %d", e.CurrentLevelIndex())
	}
	if e.LevelCount() != 2 {
		t.Errorf("Expected 2 levels, got %d", e.LevelCount())
	}
}

func TestLoadLevel(t *testing.T) {
	e := New(createTestCatalog(t))

	outcomes, err := e.LoadLevel(0)
	if err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeLevelLoaded)

	loaded := outcomes[0]
	if loaded.LevelIndex != 0 || loaded.LevelName != "Straight Down" || loaded.BoxCount != 1 {
		t.Errorf("Unexpected level_loaded outcome: %+v", loaded)
	}

	if e.State() != StatePlaying {
		t.Errorf("Expected playing state, got %s", e.State())
	}
	if e.PlayerPosition() != (Position{Row: 3, Col: 3}) {
		t.Errorf("Expected player at (3,3), got %s", e.PlayerPosition())
	}
	if e.MoveCount() != 0 {
		t.Errorf("Expected move count 0, got %d", e.MoveCount())
	}
	w, h := e.Dimensions()
	if w != 8 || h != 8 {
		t.Errorf("Expected 8x8, got %dx%d", w, h)
	}
	if len(e.Targets()) != 1 || e.Targets()[0] != (Position{Row: 6, Col: 3}) {
		t.Errorf("Unexpected targets: %v", e.Targets())
	}
}

func TestLoadLevel_Errors(t *testing.T) {
	e := New(createTestCatalog(t))

	if _, err := e.LoadLevel(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Expected ErrOutOfRange, got %v", err)
	}
	if e.State() != StateUninitialized {
		t.Errorf("Failed load must not change state, got %s", e.State())
	}
}

func TestNoActiveLevel(t *testing.T) {
	e := New(createTestCatalog(t))

	if _, err := e.Move(Down); !errors.Is(err, ErrNoActiveLevel) {
		t.Errorf("Move: expected ErrNoActiveLevel, got %v", err)
	}
	if _, err := e.Restart(); !errors.Is(err, ErrNoActiveLevel) {
		t.Errorf("Restart: expected ErrNoActiveLevel, got %v", err)
	}
	if _, err := e.Advance(); !errors.Is(err, ErrNoActiveLevel) {
		t.Errorf("Advance: expected ErrNoActiveLevel, got %v", err)
	}
}

func TestWinAndProgression(t *testing.T) {
	e := New(createTestCatalog(t))
	e.LoadLevel(0)

	outcomes, err := e.Move(Down)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeBoxMoved, OutcomePlayerMoved)

	outcomes, _ = e.Move(Down)
	expectKinds(t, outcomes, OutcomeBoxMoved, OutcomePlayerMoved, OutcomeBoxPlaced, OutcomeLevelWon)

	placed := outcomes[2]
	if placed.BoxesOnTarget != 1 || placed.TotalBoxes != 1 {
		t.Errorf("Expected BoxPlaced{1,1}, got %+v", placed)
	}
	if outcomes[3].MoveCount != 2 {
		t.Errorf("Expected LevelWon{2}, got %d", outcomes[3].MoveCount)
	}
	if e.State() != StateWon {
		t.Fatalf("Expected won state, got %s", e.State())
	}

	// The solved layout is kept until the caller advances
	outcomes, _ = e.Move(Up)
	expectKinds(t, outcomes, OutcomeBlocked)
	if outcomes[0].Reason != ReasonLevelSolved {
		t.Errorf("Expected level_solved, got %s", outcomes[0].Reason)
	}
	if e.MoveCount() != 2 {
		t.Errorf("Blocked move changed move count to %d", e.MoveCount())
	}

	outcomes, err = e.Advance()
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeLevelLoaded)
	if e.CurrentLevelIndex() != 1 {
		t.Errorf("Expected level 1, got %d", e.CurrentLevelIndex())
	}

	outcomes, _ = e.BulkMove([]Direction{Right, Right, Left})
	if !HasKind(outcomes, OutcomeLevelWon) {
		t.Fatalf("Expected strip level to be won, got %v", kinds(outcomes))
	}
	if e.MoveCount() != 2 {
		t.Errorf("BulkMove should stop at the win, move count %d", e.MoveCount())
	}

	outcomes, err = e.Advance()
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeVictory)
	if outcomes[0].LevelCount != 2 {
		t.Errorf("Expected Victory{2}, got %+v", outcomes[0])
	}
	if e.State() != StateAllLevelsComplete {
		t.Errorf("Expected all levels complete, got %s", e.State())
	}

	if _, err := e.Move(Down); !errors.Is(err, ErrNoActiveLevel) {
		t.Errorf("Move after victory: expected ErrNoActiveLevel, got %v", err)
	}
	if _, err := e.Restart(); !errors.Is(err, ErrNoActiveLevel) {
		t.Errorf("Restart after victory: expected ErrNoActiveLevel, got %v", err)
	}
	if _, err := e.LoadLevel(1); !errors.Is(err, ErrNoActiveLevel) {
		t.Errorf("LoadLevel(1) after victory: expected ErrNoActiveLevel, got %v", err)
	}

	outcomes, err = e.LoadLevel(0)
	if err != nil {
		t.Fatalf("LoadLevel(0) after victory failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeLevelLoaded)
	if e.State() != StatePlaying {
		t.Errorf("Expected playing state, got %s", e.State())
	}
}

func TestLoadLevel_PastEndIsVictory(t *testing.T) {
	e := New(createTestCatalog(t))

	outcomes, err := e.LoadLevel(5)
	if err != nil {
		t.Fatalf("LoadLevel(5) failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeVictory)
	if e.State() != StateAllLevelsComplete {
		t.Errorf("Expected all levels complete, got %s", e.State())
	}
	if e.BoxCount() != 0 || e.CurrentLevelName() != "" {
		t.Error("Expected no level state after victory")
	}
}

func TestZeroBoxLevel(t *testing.T) {
	cat := catalog.MustNew([]catalog.LevelDefinition{
		{Name: "Empty Room", Grid: [][]catalog.Cell{{0, 1, 3}}},
	})
	e := New(cat)

	outcomes, err := e.LoadLevel(0)
	if err != nil {
		t.Fatalf("LoadLevel failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeLevelLoaded, OutcomeLevelWon)
	if outcomes[1].MoveCount != 0 {
		t.Errorf("Expected LevelWon{0}, got %d", outcomes[1].MoveCount)
	}
	if e.State() != StateWon {
		t.Errorf("Expected won state, got %s", e.State())
	}
}

func TestRestart(t *testing.T) {
	e := New(createTestCatalog(t))
	e.LoadLevel(0)
	initial := e.Snapshot()

	e.Move(Down)
	e.Move(Left)

	outcomes, err := e.Restart()
	if err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	expectKinds(t, outcomes, OutcomeLevelLoaded)

	after := e.Snapshot()
	if after.MoveCount != 0 || after.Player == nil || *after.Player != *initial.Player {
		t.Errorf("Restart did not restore initial state: %+v", after)
	}
	if after.Boxes[0] != initial.Boxes[0] {
		t.Errorf("Expected box %v after restart, got %v", initial.Boxes[0], after.Boxes[0])
	}
	if len(after.History) != 0 {
		t.Errorf("Expected empty history after restart, got %v", after.History)
	}
}

func TestRestart_ReplayIsDeterministic(t *testing.T) {
	e := New(catalog.Builtin())
	e.LoadLevel(1)

	moves := []Direction{Right, Down, Right, Right, Down, Left, Down, Down, Right}
	var first []*Snapshot
	for _, m := range moves {
		e.Move(m)
		first = append(first, e.Snapshot())
	}

	e.Restart()
	for i, m := range moves {
		e.Move(m)
		s := e.Snapshot()
		if s.MoveCount != first[i].MoveCount || *s.Player != *first[i].Player {
			t.Fatalf("Step %d diverged after restart", i)
		}
		for j := range s.Rows {
			if s.Rows[j] != first[i].Rows[j] {
				t.Fatalf("Step %d row %d diverged: %q vs %q", i, j, s.Rows[j], first[i].Rows[j])
			}
		}
	}
}

func TestSubscribe(t *testing.T) {
	e := New(createTestCatalog(t))

	var received []OutcomeKind
	unsubscribe := e.Subscribe(func(o Outcome) {
		received = append(received, o.Kind)
	})

	e.LoadLevel(0)
	e.Move(Down)

	expected := []OutcomeKind{OutcomeLevelLoaded, OutcomeBoxMoved, OutcomePlayerMoved}
	if len(received) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, received)
	}
	for i := range expected {
		if received[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, received)
		}
	}

	unsubscribe()
	e.Move(Up)
	if len(received) != len(expected) {
		t.Errorf("Listener called after unsubscribe: %v", received)
	}
}

func TestSnapshot_Render(t *testing.T) {
	e := New(catalog.MustNew([]catalog.LevelDefinition{
		{Name: "Render", Grid: [][]catalog.Cell{{1, 2, 3, 2}, {0, 3, 0, 0}}},
	}))

	before := e.Snapshot()
	if before.Rows != nil || before.Player != nil {
		t.Error("Expected empty snapshot before load")
	}

	e.LoadLevel(0)
	e.Move(Right)

	rows := e.Render()
	expected := []string{"-@*$", "-.--"}
	for i := range expected {
		if rows[i] != expected[i] {
			t.Errorf("Row %d: expected %q, got %q", i, expected[i], rows[i])
		}
	}
}

func TestState_Text(t *testing.T) {
	for _, state := range []State{StateUninitialized, StatePlaying, StateWon, StateAllLevelsComplete} {
		text, _ := state.MarshalText()
		var decoded State
		if err := decoded.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s) failed: %v", text, err)
		}
		if decoded != state {
			t.Errorf("Expected %s, got %s", state, decoded)
		}
	}
}
