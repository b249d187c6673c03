package engine

import "fmt"

// Move attempts to move the player one cell in direction, pushing a box if
// one is in the way. A move that can not be made yields a single blocked
// outcome and leaves the level untouched.
func (e *PuzzleEngine) Move(direction Direction) ([]Outcome, error) {
	if e.level == nil {
		return nil, fmt.Errorf("%w: load a level before moving", ErrNoActiveLevel)
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, string(direction))
	}

	ls := e.level
	from := ls.player

	if e.state == StateWon {
		return e.emit(e.blocked(direction, from, ReasonLevelSolved)), nil
	}

	target := from.Add(direction)
	if !ls.inBounds(target) {
		return e.emit(e.blocked(direction, from, ReasonEdgeOfGrid)), nil
	}

	boxIndex := ls.boxAt(target)
	if boxIndex < 0 {
		ls.player = target
		ls.moveCount++
		ls.history = append(ls.history, direction)
		return e.emit(Outcome{
			Kind:      OutcomePlayerMoved,
			Direction: direction,
			From:      posPtr(from),
			To:        posPtr(target),
		}), nil
	}

	boxDest := target.Add(direction)
	if !ls.inBounds(boxDest) || ls.boxAt(boxDest) >= 0 {
		return e.emit(e.blocked(direction, from, ReasonBoxObstructed)), nil
	}

	box := &ls.boxes[boxIndex]
	wasOnTarget := box.OnTarget
	box.Position = boxDest
	box.OnTarget = ls.targetSet[boxDest]
	ls.player = target
	ls.moveCount++
	ls.history = append(ls.history, direction)

	moved := *box
	outcomes := []Outcome{
		{
			Kind:         OutcomeBoxMoved,
			Direction:    direction,
			From:         posPtr(target),
			To:           posPtr(boxDest),
			Box:          &moved,
			FromOnTarget: wasOnTarget,
			ToOnTarget:   moved.OnTarget,
		},
		{
			Kind:      OutcomePlayerMoved,
			Direction: direction,
			From:      posPtr(from),
			To:        posPtr(target),
		},
	}

	switch {
	case !wasOnTarget && moved.OnTarget:
		outcomes = append(outcomes, Outcome{
			Kind:          OutcomeBoxPlaced,
			Box:           &moved,
			BoxesOnTarget: ls.boxesOnTarget(),
			TotalBoxes:    len(ls.boxes),
		})
		// Win is only evaluated right after a placement.
		if ls.solved() {
			e.state = StateWon
			outcomes = append(outcomes, Outcome{
				Kind:       OutcomeLevelWon,
				LevelIndex: ls.index,
				LevelName:  ls.name,
			})
		}
	case wasOnTarget && !moved.OnTarget:
		outcomes = append(outcomes, Outcome{
			Kind:          OutcomeBoxRemoved,
			Box:           &moved,
			BoxesOnTarget: ls.boxesOnTarget(),
			TotalBoxes:    len(ls.boxes),
		})
	}

	return e.emit(outcomes...), nil
}

// CanMove reports whether a move in direction would relocate the player.
func (e *PuzzleEngine) CanMove(direction Direction) bool {
	if e.level == nil || e.state != StatePlaying || !direction.Valid() {
		return false
	}
	ls := e.level
	target := ls.player.Add(direction)
	if !ls.inBounds(target) {
		return false
	}
	if ls.boxAt(target) < 0 {
		return true
	}
	boxDest := target.Add(direction)
	return ls.inBounds(boxDest) && ls.boxAt(boxDest) < 0
}

// PossibleMoves returns all directions the player can currently move
func (e *PuzzleEngine) PossibleMoves() []Direction {
	var possible []Direction
	for _, d := range Directions {
		if e.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

func (e *PuzzleEngine) blocked(direction Direction, at Position, reason BlockReason) Outcome {
	return Outcome{
		Kind:      OutcomeBlocked,
		Direction: direction,
		From:      posPtr(at),
		Reason:    reason,
	}
}
