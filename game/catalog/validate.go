package catalog

import "fmt"

// ValidateLevel checks a single level definition for structural correctness.
// Errors wrap ErrInvalidLevelDefinition.
func ValidateLevel(def LevelDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLevelDefinition)
	}

	if len(def.Grid) == 0 {
		return fmt.Errorf("%w: level %q has an empty grid", ErrInvalidLevelDefinition, def.Name)
	}
	if len(def.Grid) > MaxGridSize {
		return fmt.Errorf("%w: level %q has %d rows, at most %d allowed",
			ErrInvalidLevelDefinition, def.Name, len(def.Grid), MaxGridSize)
	}

	width := len(def.Grid[0])
	if width == 0 {
		return fmt.Errorf("%w: level %q has an empty first row", ErrInvalidLevelDefinition, def.Name)
	}
	if width > MaxGridSize {
		return fmt.Errorf("%w: level %q has %d columns, at most %d allowed",
			ErrInvalidLevelDefinition, def.Name, width, MaxGridSize)
	}

	players := 0
	for r, row := range def.Grid {
		if len(row) != width {
			return fmt.Errorf("%w: level %q row %d has %d cells, expected %d",
				ErrInvalidLevelDefinition, def.Name, r, len(row), width)
		}
		for c, cell := range row {
			switch cell {
			case CellEmpty, CellBox, CellTarget:
			case CellPlayer:
				players++
			default:
				return fmt.Errorf("%w: level %q has unknown cell code %d at row %d, col %d",
					ErrInvalidLevelDefinition, def.Name, int(cell), r, c)
			}
		}
	}

	if players != 1 {
		return fmt.Errorf("%w: level %q must have exactly one player cell, found %d",
			ErrInvalidLevelDefinition, def.Name, players)
	}

	return nil
}
