package catalog

import "errors"

// Cell is the code stored in a single grid position of a level definition.
type Cell int

const (
	CellEmpty  Cell = 0
	CellPlayer Cell = 1
	CellBox    Cell = 2
	CellTarget Cell = 3

	// Validation constants
	MaxGridSize = 64
)

var (
	ErrOutOfRange             = errors.New("level index out of range")
	ErrInvalidLevelDefinition = errors.New("invalid level definition")
)

// String returns the lower-case name of the cell code.
func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellPlayer:
		return "player"
	case CellBox:
		return "box"
	case CellTarget:
		return "target"
	default:
		return "unknown"
	}
}

// LevelDefinition is one static level layout.
type LevelDefinition struct {
	Name string   `json:"name" yaml:"name"`
	Grid [][]Cell `json:"grid" yaml:"grid"`
}

// Height returns the number of grid rows.
func (d LevelDefinition) Height() int {
	return len(d.Grid)
}

// Width returns the number of grid columns, taken from the first row.
func (d LevelDefinition) Width() int {
	if len(d.Grid) == 0 {
		return 0
	}
	return len(d.Grid[0])
}

// Count returns how many cells of the given code the grid holds.
func (d LevelDefinition) Count(code Cell) int {
	count := 0
	for _, row := range d.Grid {
		for _, cell := range row {
			if cell == code {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy of the definition.
func (d LevelDefinition) Clone() LevelDefinition {
	grid := make([][]Cell, len(d.Grid))
	for i, row := range d.Grid {
		grid[i] = make([]Cell, len(row))
		copy(grid[i], row)
	}
	return LevelDefinition{Name: d.Name, Grid: grid}
}
