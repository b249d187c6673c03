package engine

import "strings"

// Glyphs used by Render, one per cell.
const (
	GlyphFloor          = '-'
	GlyphTarget         = '.'
	GlyphPlayer         = '@'
	GlyphPlayerOnTarget = '+'
	GlyphBox            = '$'
	GlyphBoxOnTarget    = '*'
)

// Snapshot is a read-only JSON view of the engine.
type Snapshot struct {
	State         State       `json:"state"`
	LevelIndex    int         `json:"level_index"`
	LevelName     string      `json:"level_name,omitempty"`
	LevelCount    int         `json:"level_count"`
	Width         int         `json:"width,omitempty"`
	Height        int         `json:"height,omitempty"`
	Player        *Position   `json:"player,omitempty"`
	Boxes         []Box       `json:"boxes"`
	Targets       []Position  `json:"targets"`
	MoveCount     int         `json:"move_count"`
	BoxCount      int         `json:"box_count"`
	BoxesOnTarget int         `json:"boxes_on_target"`
	History       []Direction `json:"history"`
	PossibleMoves []Direction `json:"possible_moves"`
	Rows          []string    `json:"rows,omitempty"`
}

// Snapshot captures the current state. Slices are copies.
func (e *PuzzleEngine) Snapshot() *Snapshot {
	s := &Snapshot{
		State:         e.state,
		LevelIndex:    e.index,
		LevelName:     e.CurrentLevelName(),
		LevelCount:    e.LevelCount(),
		Boxes:         e.Boxes(),
		Targets:       e.Targets(),
		MoveCount:     e.MoveCount(),
		BoxCount:      e.BoxCount(),
		BoxesOnTarget: e.BoxesOnTargetCount(),
		History:       e.History(),
		PossibleMoves: e.PossibleMoves(),
	}
	if s.Boxes == nil {
		s.Boxes = []Box{}
	}
	if s.Targets == nil {
		s.Targets = []Position{}
	}
	if s.History == nil {
		s.History = []Direction{}
	}
	if s.PossibleMoves == nil {
		s.PossibleMoves = []Direction{}
	}
	if e.level != nil {
		s.Width, s.Height = e.Dimensions()
		s.Player = posPtr(e.level.player)
		s.Rows = e.Render()
	}
	return s
}

// Render draws the level as text rows, one glyph per cell.
func (e *PuzzleEngine) Render() []string {
	ls := e.level
	if ls == nil {
		return nil
	}

	grid := make([][]rune, ls.height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(string(GlyphFloor), ls.width))
	}
	for _, t := range ls.targets {
		grid[t.Row][t.Col] = GlyphTarget
	}
	for _, b := range ls.boxes {
		if b.OnTarget {
			grid[b.Row][b.Col] = GlyphBoxOnTarget
		} else {
			grid[b.Row][b.Col] = GlyphBox
		}
	}
	if ls.targetSet[ls.player] {
		grid[ls.player.Row][ls.player.Col] = GlyphPlayerOnTarget
	} else {
		grid[ls.player.Row][ls.player.Col] = GlyphPlayer
	}

	rows := make([]string, ls.height)
	for r, row := range grid {
		rows[r] = string(row)
	}
	return rows
}
