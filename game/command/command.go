// Package command parses keyboard keys and voice transcripts into one
// Command type so every input source reaches the game through the same path.
package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

var ErrUnrecognized = errors.New("unrecognized command")

// Kind identifies what a command asks for.
type Kind string

const (
	KindMove        Kind = "move"
	KindRestart     Kind = "restart"
	KindLoadLevel   Kind = "load_level"
	KindHelp        Kind = "help"
	KindStatus      Kind = "status"
	KindToggleVoice Kind = "toggle_voice"
	KindTogglePanel Kind = "toggle_panel"
)

// Command is a parsed player intent. Direction is set for moves, Level
// (0-based) for level loads.
type Command struct {
	Kind      Kind             `json:"kind"`
	Direction engine.Direction `json:"direction,omitempty"`
	Level     int              `json:"level,omitempty"`
}

// Move returns a move command.
func Move(d engine.Direction) Command {
	return Command{Kind: KindMove, Direction: d}
}

// LoadLevel returns a command loading the 0-based level index.
func LoadLevel(index int) Command {
	return Command{Kind: KindLoadLevel, Level: index}
}

func (c Command) String() string {
	switch c.Kind {
	case KindMove:
		return fmt.Sprintf("move %s", c.Direction)
	case KindLoadLevel:
		return fmt.Sprintf("load level %d", c.Level+1)
	default:
		return strings.ReplaceAll(string(c.Kind), "_", " ")
	}
}

var keyBindings = map[string]Command{
	"arrowup":    Move(engine.Up),
	"up":         Move(engine.Up),
	"w":          Move(engine.Up),
	"arrowdown":  Move(engine.Down),
	"down":       Move(engine.Down),
	"s":          Move(engine.Down),
	"arrowleft":  Move(engine.Left),
	"left":       Move(engine.Left),
	"a":          Move(engine.Left),
	"arrowright": Move(engine.Right),
	"right":      Move(engine.Right),
	"d":          Move(engine.Right),
	"r":          {Kind: KindRestart},
	"h":          {Kind: KindHelp},
	"v":          {Kind: KindToggleVoice},
	"i":          {Kind: KindTogglePanel},
}

// ParseKey maps a key name to a command. Names are case-insensitive and
// accept both DOM style ("ArrowUp") and plain ("up") arrow names.
func ParseKey(key string) (Command, error) {
	if cmd, ok := keyBindings[strings.ToLower(strings.TrimSpace(key))]; ok {
		return cmd, nil
	}
	return Command{}, fmt.Errorf("%w: key %q", ErrUnrecognized, key)
}

var levelPattern = regexp.MustCompile(`\blevel\s+([a-z0-9]+)\b`)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// voiceRules are tried in order; the first rule with a matching keyword wins.
var voiceRules = []struct {
	keywords []string
	command  Command
}{
	{[]string{"up", "top"}, Move(engine.Up)},
	{[]string{"down", "bottom"}, Move(engine.Down)},
	{[]string{"left"}, Move(engine.Left)},
	{[]string{"right", "write", "bright"}, Move(engine.Right)},
	{[]string{"restart", "reset"}, Command{Kind: KindRestart}},
	{[]string{"help", "instruction"}, Command{Kind: KindHelp}},
	{[]string{"status", "where", "position"}, Command{Kind: KindStatus}},
	{[]string{"toggle voice", "voice off", "voice on"}, Command{Kind: KindToggleVoice}},
}

// ParseVoice interprets a speech transcript. Keywords match as substrings,
// so "move up please" and "go to the top" both move up. A transcript naming
// a level ("level 2", "level three") loads that level and takes precedence.
func ParseVoice(transcript string) (Command, error) {
	text := strings.ToLower(strings.TrimSpace(transcript))
	if text == "" {
		return Command{}, fmt.Errorf("%w: empty transcript", ErrUnrecognized)
	}

	if m := levelPattern.FindStringSubmatch(text); m != nil {
		if n, ok := parseNumber(m[1]); ok && n >= 1 {
			return LoadLevel(n - 1), nil
		}
	}

	for _, rule := range voiceRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.command, nil
			}
		}
	}

	return Command{}, fmt.Errorf("%w: %q", ErrUnrecognized, transcript)
}

func parseNumber(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := numberWords[s]
	return n, ok
}
