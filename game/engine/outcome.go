package engine

// OutcomeKind identifies an outcome event.
type OutcomeKind string

const (
	OutcomeLevelLoaded OutcomeKind = "level_loaded"
	OutcomePlayerMoved OutcomeKind = "player_moved"
	OutcomeBoxMoved    OutcomeKind = "box_moved"
	OutcomeBoxPlaced   OutcomeKind = "box_placed"
	OutcomeBoxRemoved  OutcomeKind = "box_removed"
	OutcomeBlocked     OutcomeKind = "blocked"
	OutcomeLevelWon    OutcomeKind = "level_won"
	OutcomeVictory     OutcomeKind = "victory"
)

// BlockReason explains a blocked move.
type BlockReason string

const (
	ReasonEdgeOfGrid    BlockReason = "edge_of_grid"
	ReasonBoxObstructed BlockReason = "box_obstructed"
	ReasonLevelSolved   BlockReason = "level_solved"
)

// Outcome is a single event emitted by an engine command. Only the fields
// relevant to Kind are populated.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`

	// level_loaded, level_won, victory
	LevelIndex int    `json:"level_index"`
	LevelName  string `json:"level_name,omitempty"`
	BoxCount   int    `json:"box_count,omitempty"`
	LevelCount int    `json:"level_count,omitempty"`

	// player_moved, box_moved, blocked
	Direction Direction `json:"direction,omitempty"`
	From      *Position `json:"from,omitempty"`
	To        *Position `json:"to,omitempty"`

	// box_moved
	Box          *Box `json:"box,omitempty"`
	FromOnTarget bool `json:"from_on_target,omitempty"`
	ToOnTarget   bool `json:"to_on_target,omitempty"`

	// box_placed, box_removed
	BoxesOnTarget int `json:"boxes_on_target,omitempty"`
	TotalBoxes    int `json:"total_boxes,omitempty"`

	// blocked
	Reason BlockReason `json:"reason,omitempty"`

	// Move count of the level after the command.
	MoveCount int `json:"move_count"`
}

// IsBlocked reports whether o is a blocked outcome.
func (o Outcome) IsBlocked() bool {
	return o.Kind == OutcomeBlocked
}

// HasKind reports whether any outcome in outcomes has the given kind.
func HasKind(outcomes []Outcome, kind OutcomeKind) bool {
	for _, o := range outcomes {
		if o.Kind == kind {
			return true
		}
	}
	return false
}

func posPtr(p Position) *Position {
	return &p
}
