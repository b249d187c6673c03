package engine

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/boxpush/game/catalog"
)

var (
	ErrNoActiveLevel    = errors.New("no active level")
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrOutOfRange is returned for negative level indexes.
	ErrOutOfRange = catalog.ErrOutOfRange
)

// State is the engine-level lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StatePlaying
	StateWon
	StateAllLevelsComplete
)

var stateNames = map[State]string{
	StateUninitialized:     "uninitialized",
	StatePlaying:           "playing",
	StateWon:               "won",
	StateAllLevelsComplete: "all_levels_complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown engine state %q", string(text))
}

// Position represents row,col coordinates. Row 0 is the top of the grid.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns p shifted by one step in direction d.
func (p Position) Add(d Direction) Position {
	dr, dc := d.delta()
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Box is a movable box and whether it currently rests on a target.
type Box struct {
	Position
	OnTarget bool `json:"on_target"`
}

// LevelSource supplies level definitions by index.
type LevelSource interface {
	Get(index int) (catalog.LevelDefinition, error)
	Count() int
}

// Listener receives outcomes in emission order.
type Listener func(Outcome)

// levelState is the live, mutable state of the loaded level.
type levelState struct {
	index     int
	name      string
	width     int
	height    int
	player    Position
	boxes     []Box
	targets   []Position
	targetSet map[Position]bool
	moveCount int
	history   []Direction
}

// newLevelState scans the grid once, placing the player, boxes and targets.
func newLevelState(index int, def catalog.LevelDefinition) *levelState {
	ls := &levelState{
		index:     index,
		name:      def.Name,
		width:     def.Width(),
		height:    def.Height(),
		targetSet: make(map[Position]bool),
	}
	for r, row := range def.Grid {
		for c, cell := range row {
			pos := Position{Row: r, Col: c}
			switch cell {
			case catalog.CellPlayer:
				ls.player = pos
			case catalog.CellBox:
				ls.boxes = append(ls.boxes, Box{Position: pos})
			case catalog.CellTarget:
				ls.targets = append(ls.targets, pos)
				ls.targetSet[pos] = true
			}
		}
	}
	return ls
}

func (ls *levelState) inBounds(p Position) bool {
	return p.Row >= 0 && p.Row < ls.height && p.Col >= 0 && p.Col < ls.width
}

// boxAt returns the index of the box at p, or -1.
func (ls *levelState) boxAt(p Position) int {
	for i, b := range ls.boxes {
		if b.Position == p {
			return i
		}
	}
	return -1
}

func (ls *levelState) boxesOnTarget() int {
	count := 0
	for _, b := range ls.boxes {
		if b.OnTarget {
			count++
		}
	}
	return count
}

func (ls *levelState) solved() bool {
	return ls.boxesOnTarget() == len(ls.boxes)
}
