package announce

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

// View is the read-only slice of the engine the announcements need.
type View interface {
	State() engine.State
	CurrentLevelIndex() int
	CurrentLevelName() string
	LevelCount() int
	MoveCount() int
	BoxCount() int
	BoxesOnTargetCount() int
	PlayerPosition() engine.Position
	Boxes() []engine.Box
	Targets() []engine.Position
}

// Status describes the player, every box and target, progress and moves.
// Rows and columns are spoken 1-based.
func Status(v View) string {
	switch v.State() {
	case engine.StateUninitialized:
		return "No level is loaded."
	case engine.StateAllLevelsComplete:
		return fmt.Sprintf("All %d levels are complete.", v.LevelCount())
	}

	var b strings.Builder
	p := v.PlayerPosition()
	fmt.Fprintf(&b, "Player is at row %d, column %d. ", p.Row+1, p.Col+1)

	boxes := v.Boxes()
	fmt.Fprintf(&b, "There %s %d %s. ", plural(len(boxes), "is", "are"), len(boxes), plural(len(boxes), "box", "boxes"))
	for i, box := range boxes {
		fmt.Fprintf(&b, "Box %d is at row %d, column %d", i+1, box.Row+1, box.Col+1)
		if box.OnTarget {
			b.WriteString(", on target. ")
		} else {
			b.WriteString(", not on target. ")
		}
	}

	targets := v.Targets()
	fmt.Fprintf(&b, "There %s %d %s. ", plural(len(targets), "is", "are"), len(targets), plural(len(targets), "target", "targets"))
	for i, t := range targets {
		fmt.Fprintf(&b, "Target %d is at row %d, column %d. ", i+1, t.Row+1, t.Col+1)
	}

	fmt.Fprintf(&b, "Progress: %d of %d %s on %s. ", v.BoxesOnTargetCount(), len(boxes),
		plural(len(boxes), "box", "boxes"), plural(len(boxes), "target", "targets"))
	fmt.Fprintf(&b, "You have made %d %s.", v.MoveCount(), plural(v.MoveCount(), "move", "moves"))

	return b.String()
}

// HUD returns the heads-up display lines, for example
// "Level 2/3", "Moves: 7" and "Boxes: 1/2".
func HUD(v View) []string {
	level := v.CurrentLevelIndex() + 1
	if v.State() == engine.StateAllLevelsComplete {
		level = v.LevelCount()
	}
	if level < 0 {
		level = 0
	}
	return []string{
		fmt.Sprintf("Level %d/%d", level, v.LevelCount()),
		fmt.Sprintf("Moves: %d", v.MoveCount()),
		fmt.Sprintf("Boxes: %d/%d", v.BoxesOnTargetCount(), v.BoxCount()),
	}
}

// Welcome is spoken once when a player connects.
func Welcome() string {
	return "Welcome to Box Push. Use arrow keys, WASD, or voice commands to play. Say help for instructions."
}

// Instructions returns the full spoken help text.
func Instructions() string {
	return strings.Join([]string{
		"Welcome to Box Push.",
		"This is a puzzle game where you push boxes onto targets.",
		"Controls: Use arrow keys or W, A, S, D keys to move.",
		"Press R to restart the current level.",
		"Press H to hear these instructions again.",
		"Press V to toggle voice assistance on or off.",
		"Press I to show or hide the instruction panel.",
		`Voice commands: Say "move up", "move down", "move left", or "move right" to move.`,
		`Say "restart" to restart the level.`,
		`Say "level" and a number to jump to that level.`,
		`Say "status" to hear your current position and progress.`,
		`Say "help" to hear these instructions.`,
		"Every move makes a beep sound. Pushing a box makes a boop sound.",
		"Getting a box on target makes a ding sound.",
		"Winning a level plays a victory melody.",
		"Good luck and have fun!",
	}, " ")
}
