package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Commands
	LoadLevel(index int) ([]Outcome, error)
	Restart() ([]Outcome, error)
	Move(direction Direction) ([]Outcome, error)
	BulkMove(directions []Direction) ([]Outcome, error)
	Advance() ([]Outcome, error)

	// Queries
	State() State
	CurrentLevelIndex() int
	CurrentLevelName() string
	LevelCount() int
	MoveCount() int
	BoxCount() int
	BoxesOnTargetCount() int
	PlayerPosition() Position
	Boxes() []Box
	Targets() []Position
	Dimensions() (width, height int)
	History() []Direction
	Snapshot() *Snapshot

	// Observers
	Subscribe(listener Listener) (unsubscribe func())
}

// PuzzleEngine implements the Engine interface
type PuzzleEngine struct {
	levels LevelSource
	state  State
	index  int
	level  *levelState

	listeners []*subscription
	nextID    int
}

type subscription struct {
	id       int
	listener Listener
}

// New creates an engine over levels. No level is loaded until LoadLevel.
func New(levels LevelSource) *PuzzleEngine {
	return &PuzzleEngine{
		levels: levels,
		state:  StateUninitialized,
		index:  -1,
	}
}

// LoadLevel discards the current level and loads the level at index. An
// index past the last level ends the game with a victory outcome.
func (e *PuzzleEngine) LoadLevel(index int) ([]Outcome, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}

	count := e.levels.Count()
	if index >= count {
		e.state = StateAllLevelsComplete
		e.index = index
		e.level = nil
		return e.emit(Outcome{
			Kind:       OutcomeVictory,
			LevelIndex: index,
			LevelCount: count,
		}), nil
	}

	if e.state == StateAllLevelsComplete && index != 0 {
		return nil, fmt.Errorf("%w: all levels complete, load level 0 to play again", ErrNoActiveLevel)
	}

	def, err := e.levels.Get(index)
	if err != nil {
		return nil, err
	}

	e.level = newLevelState(index, def)
	e.index = index
	e.state = StatePlaying

	outcomes := []Outcome{{
		Kind:       OutcomeLevelLoaded,
		LevelIndex: index,
		LevelName:  def.Name,
		BoxCount:   len(e.level.boxes),
		LevelCount: count,
	}}

	// A level without boxes is solved as soon as it loads.
	if len(e.level.boxes) == 0 {
		e.state = StateWon
		outcomes = append(outcomes, Outcome{
			Kind:       OutcomeLevelWon,
			LevelIndex: index,
			LevelName:  def.Name,
		})
	}

	return e.emit(outcomes...), nil
}

// Restart reloads the current level from the level source.
func (e *PuzzleEngine) Restart() ([]Outcome, error) {
	if e.level == nil {
		return nil, fmt.Errorf("%w: nothing to restart", ErrNoActiveLevel)
	}
	return e.LoadLevel(e.index)
}

// Advance loads the level after the current one.
func (e *PuzzleEngine) Advance() ([]Outcome, error) {
	if e.level == nil {
		return nil, fmt.Errorf("%w: nothing to advance from", ErrNoActiveLevel)
	}
	return e.LoadLevel(e.index + 1)
}

// BulkMove executes moves in sequence and returns all their outcomes. It
// stops early once the level is won.
func (e *PuzzleEngine) BulkMove(directions []Direction) ([]Outcome, error) {
	var all []Outcome
	for _, direction := range directions {
		outcomes, err := e.Move(direction)
		if err != nil {
			return all, err
		}
		all = append(all, outcomes...)
		if e.state == StateWon {
			break
		}
	}
	return all, nil
}

// Subscribe registers a listener for every outcome emitted afterwards.
// Listeners run synchronously, in order, before the command returns the
// same outcomes to its caller.
func (e *PuzzleEngine) Subscribe(listener Listener) (unsubscribe func()) {
	e.nextID++
	sub := &subscription{id: e.nextID, listener: listener}
	e.listeners = append(e.listeners, sub)

	return func() {
		for i, s := range e.listeners {
			if s.id == sub.id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// emit delivers outcomes to listeners in order and returns them.
func (e *PuzzleEngine) emit(outcomes ...Outcome) []Outcome {
	if e.level != nil {
		for i := range outcomes {
			outcomes[i].MoveCount = e.level.moveCount
		}
	}
	listeners := append([]*subscription(nil), e.listeners...)
	for _, o := range outcomes {
		for _, sub := range listeners {
			sub.listener(o)
		}
	}
	return outcomes
}

// State returns the lifecycle state
func (e *PuzzleEngine) State() State {
	return e.state
}

// CurrentLevelIndex returns the index of the current level, -1 before the
// first load and the requested index once all levels are complete.
func (e *PuzzleEngine) CurrentLevelIndex() int {
	return e.index
}

// CurrentLevelName returns the name of the loaded level
func (e *PuzzleEngine) CurrentLevelName() string {
	if e.level == nil {
		return ""
	}
	return e.level.name
}

// LevelCount returns the number of levels in the source
func (e *PuzzleEngine) LevelCount() int {
	return e.levels.Count()
}

// MoveCount returns the number of successful moves in this attempt
func (e *PuzzleEngine) MoveCount() int {
	if e.level == nil {
		return 0
	}
	return e.level.moveCount
}

// BoxCount returns the number of boxes in the level
func (e *PuzzleEngine) BoxCount() int {
	if e.level == nil {
		return 0
	}
	return len(e.level.boxes)
}

// BoxesOnTargetCount returns the number of boxes resting on a target
func (e *PuzzleEngine) BoxesOnTargetCount() int {
	if e.level == nil {
		return 0
	}
	return e.level.boxesOnTarget()
}

// PlayerPosition returns the current player position
func (e *PuzzleEngine) PlayerPosition() Position {
	if e.level == nil {
		return Position{}
	}
	return e.level.player
}

// Boxes returns a copy of the boxes in level order
func (e *PuzzleEngine) Boxes() []Box {
	if e.level == nil {
		return nil
	}
	return append([]Box(nil), e.level.boxes...)
}

// Targets returns a copy of the targets in level order
func (e *PuzzleEngine) Targets() []Position {
	if e.level == nil {
		return nil
	}
	return append([]Position(nil), e.level.targets...)
}

// Dimensions returns the grid width and height
func (e *PuzzleEngine) Dimensions() (width, height int) {
	if e.level == nil {
		return 0, 0
	}
	return e.level.width, e.level.height
}

// History returns the successful moves of this attempt
func (e *PuzzleEngine) History() []Direction {
	if e.level == nil {
		return nil
	}
	return append([]Direction(nil), e.level.history...)
}
