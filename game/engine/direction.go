package engine

import (
	"fmt"
	"strings"
)

// Direction is one of the four grid directions.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists every direction in a stable order.
var Directions = []Direction{Up, Down, Left, Right}

var directionAliases = map[string]Direction{
	"up":    Up,
	"north": Up,
	"down":  Down,
	"south": Down,
	"left":  Left,
	"west":  Left,
	"right": Right,
	"east":  Right,
}

// ParseDirection converts a case-insensitive direction name. Compass names
// are accepted as aliases.
func ParseDirection(s string) (Direction, error) {
	if d, ok := directionAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q (expected up, down, left or right)", ErrInvalidDirection, s)
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// delta returns the row and column offsets for d.
func (d Direction) delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}
