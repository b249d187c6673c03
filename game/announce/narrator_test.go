package announce

import (
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/boxpush/game/catalog"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

func TestNarrator_Cues(t *testing.T) {
	to := engine.Position{Row: 2, Col: 4}

	tests := []struct {
		name    string
		outcome engine.Outcome
		text    string
		quick   bool
		tone    string
	}{
		{
			name:    "level loaded",
			outcome: engine.Outcome{Kind: engine.OutcomeLevelLoaded, LevelIndex: 1, LevelName: "Double Trouble", BoxCount: 2},
			text:    "Level 2: Double Trouble. You have 2 boxes to push onto targets. Good luck!",
			tone:    "start",
		},
		{
			name:    "level loaded single box",
			outcome: engine.Outcome{Kind: engine.OutcomeLevelLoaded, LevelName: "Getting Started", BoxCount: 1},
			text:    "Level 1: Getting Started. You have 1 box to push onto targets. Good luck!",
			tone:    "start",
		},
		{
			name:    "player moved",
			outcome: engine.Outcome{Kind: engine.OutcomePlayerMoved, To: &to},
			text:    "Moved to row 3, column 5",
			quick:   true,
			tone:    "move",
		},
		{
			name:    "box moved",
			outcome: engine.Outcome{Kind: engine.OutcomeBoxMoved},
			text:    "Box pushed",
			quick:   true,
			tone:    "push",
		},
		{
			name:    "box placed",
			outcome: engine.Outcome{Kind: engine.OutcomeBoxPlaced, BoxesOnTarget: 1, TotalBoxes: 2},
			text:    "Excellent! Box on target. 1 of 2 boxes placed.",
			tone:    "success",
		},
		{
			name:    "box removed",
			outcome: engine.Outcome{Kind: engine.OutcomeBoxRemoved},
			text:    "Box moved off target",
		},
		{
			name:    "edge of grid",
			outcome: engine.Outcome{Kind: engine.OutcomeBlocked, Reason: engine.ReasonEdgeOfGrid},
			text:    "Cannot move there. Edge of grid.",
			tone:    "blocked",
		},
		{
			name:    "box obstructed",
			outcome: engine.Outcome{Kind: engine.OutcomeBlocked, Reason: engine.ReasonBoxObstructed},
			text:    "Cannot push box. Blocked.",
			tone:    "blocked",
		},
		{
			name:    "level won in one move",
			outcome: engine.Outcome{Kind: engine.OutcomeLevelWon, MoveCount: 1},
			text:    "Congratulations! Level complete! You won in 1 move. Well done!",
			tone:    "win",
		},
		{
			name:    "victory",
			outcome: engine.Outcome{Kind: engine.OutcomeVictory, LevelCount: 3},
			text:    "Amazing! You have completed all 3 levels! You are a puzzle master! Press R to play again from level 1.",
		},
	}

	n := NewNarrator()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cue := n.Cue(test.outcome)
			if cue.Text != test.text {
				t.Errorf("Expected text %q, got %q", test.text, cue.Text)
			}
			if cue.Quick != test.quick {
				t.Errorf("Expected quick=%v, got %v", test.quick, cue.Quick)
			}
			if !cue.Speak {
				t.Error("Expected cue to be spoken")
			}
			if cue.Kind != test.outcome.Kind {
				t.Errorf("Expected kind %s, got %s", test.outcome.Kind, cue.Kind)
			}
			switch {
			case test.tone == "" && cue.Tone != nil:
				t.Errorf("Expected no tone, got %s", cue.Tone.Name)
			case test.tone != "" && (cue.Tone == nil || cue.Tone.Name != test.tone):
				t.Errorf("Expected tone %s, got %+v", test.tone, cue.Tone)
			}
		})
	}
}

func TestNarrator_ToggleVoice(t *testing.T) {
	n := NewNarrator()

	cue := n.ToggleVoice()
	if n.VoiceEnabled {
		t.Fatal("Expected voice to be disabled")
	}
	if cue.Text != "Voice assistance disabled" || cue.Speak {
		t.Errorf("Unexpected cue: %+v", cue)
	}

	// Captions and tones survive with voice off
	moved := n.Cue(engine.Outcome{Kind: engine.OutcomeBoxMoved})
	if moved.Speak || moved.Text == "" || moved.Tone == nil {
		t.Errorf("Expected silent captioned cue with tone, got %+v", moved)
	}

	cue = n.ToggleVoice()
	if cue.Text != "Voice assistance enabled" || !cue.Speak {
		t.Errorf("Unexpected cue: %+v", cue)
	}
}

func TestTone_DurationMS(t *testing.T) {
	if got := ToneWin.DurationMS(); got != 750 {
		t.Errorf("Expected win melody of 750ms, got %d", got)
	}
	if ToneBlocked.Notes[0].Waveform != WaveSawtooth {
		t.Errorf("Expected sawtooth blocked tone, got %s", ToneBlocked.Notes[0].Waveform)
	}
}

func TestStatus(t *testing.T) {
	e := engine.New(catalog.Builtin())
	if got := Status(e); got != "No level is loaded." {
		t.Errorf("Unexpected status before load: %q", got)
	}

	e.LoadLevel(0)
	status := Status(e)

	expected := []string{
		"Player is at row 3, column 3.",
		"There is 1 box.",
		"Box 1 is at row 5, column 4, not on target.",
		"There is 1 target.",
		"Target 1 is at row 4, column 6.",
		"Progress: 0 of 1 box on target.",
		"You have made 0 moves.",
	}
	for _, part := range expected {
		if !strings.Contains(status, part) {
			t.Errorf("Expected status to contain %q, got %q", part, status)
		}
	}

	e.LoadLevel(3)
	if got := Status(e); got != "All 3 levels are complete." {
		t.Errorf("Unexpected status after victory: %q", got)
	}
}

func TestHUD(t *testing.T) {
	e := engine.New(catalog.Builtin())
	e.LoadLevel(1)
	e.Move(engine.Right)

	hud := HUD(e)
	expected := []string{"Level 2/3", "Moves: 1", "Boxes: 0/2"}
	for i := range expected {
		if hud[i] != expected[i] {
			t.Errorf("Expected %q, got %q", expected[i], hud[i])
		}
	}
}

func TestInstructions(t *testing.T) {
	text := Instructions()
	for _, want := range []string{"Press R", "Press H", "Press V", "Press I", `Say "status"`} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected instructions to mention %q", want)
		}
	}
}
