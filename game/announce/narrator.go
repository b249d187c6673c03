package announce

import (
	"fmt"

	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

// Cue is one piece of feedback. Text is always set for captions and screen
// readers; Speak tells the client whether to also voice it. Quick marks short
// confirmations a client may interrupt.
type Cue struct {
	Kind  engine.OutcomeKind `json:"kind,omitempty"`
	Text  string             `json:"text,omitempty"`
	Speak bool               `json:"speak"`
	Quick bool               `json:"quick,omitempty"`
	Tone  *Tone              `json:"tone,omitempty"`
}

// Narrator renders outcomes as cues.
type Narrator struct {
	VoiceEnabled bool
}

// NewNarrator returns a narrator with voice assistance on.
func NewNarrator() *Narrator {
	return &Narrator{VoiceEnabled: true}
}

// Say wraps text as a cue, voiced only while voice assistance is on.
func (n *Narrator) Say(text string, quick bool) Cue {
	return Cue{Text: text, Speak: n.VoiceEnabled, Quick: quick}
}

// ToggleVoice flips voice assistance and announces the new setting.
func (n *Narrator) ToggleVoice() Cue {
	n.VoiceEnabled = !n.VoiceEnabled
	status := "disabled"
	if n.VoiceEnabled {
		status = "enabled"
	}
	return n.Say("Voice assistance "+status, false)
}

// Cues maps each outcome to its cue, in order.
func (n *Narrator) Cues(outcomes []engine.Outcome) []Cue {
	cues := make([]Cue, 0, len(outcomes))
	for _, o := range outcomes {
		cues = append(cues, n.Cue(o))
	}
	return cues
}

// Cue maps one outcome to its cue.
func (n *Narrator) Cue(o engine.Outcome) Cue {
	var cue Cue
	switch o.Kind {
	case engine.OutcomeLevelLoaded:
		cue = n.Say(fmt.Sprintf("Level %d: %s. You have %d %s to push onto targets. Good luck!",
			o.LevelIndex+1, o.LevelName, o.BoxCount, plural(o.BoxCount, "box", "boxes")), false)
		cue.Tone = toneRef(ToneStart)

	case engine.OutcomePlayerMoved:
		cue = n.Say(fmt.Sprintf("Moved to row %d, column %d", o.To.Row+1, o.To.Col+1), true)
		cue.Tone = toneRef(ToneMove)

	case engine.OutcomeBoxMoved:
		cue = n.Say("Box pushed", true)
		cue.Tone = toneRef(TonePush)

	case engine.OutcomeBoxPlaced:
		cue = n.Say(fmt.Sprintf("Excellent! Box on target. %d of %d %s placed.",
			o.BoxesOnTarget, o.TotalBoxes, plural(o.TotalBoxes, "box", "boxes")), false)
		cue.Tone = toneRef(ToneSuccess)

	case engine.OutcomeBoxRemoved:
		cue = n.Say("Box moved off target", false)

	case engine.OutcomeBlocked:
		switch o.Reason {
		case engine.ReasonEdgeOfGrid:
			cue = n.Say("Cannot move there. Edge of grid.", false)
		case engine.ReasonBoxObstructed:
			cue = n.Say("Cannot push box. Blocked.", false)
		default:
			cue = n.Say("Level complete. Waiting for the next level.", false)
		}
		cue.Tone = toneRef(ToneBlocked)

	case engine.OutcomeLevelWon:
		cue = n.Say(fmt.Sprintf("Congratulations! Level complete! You won in %d %s. Well done!",
			o.MoveCount, plural(o.MoveCount, "move", "moves")), false)
		cue.Tone = toneRef(ToneWin)

	case engine.OutcomeVictory:
		cue = n.Say(fmt.Sprintf("Amazing! You have completed all %d levels! You are a puzzle master! Press R to play again from level 1.",
			o.LevelCount), false)
	}
	cue.Kind = o.Kind
	return cue
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func toneRef(t Tone) *Tone {
	return &t
}
