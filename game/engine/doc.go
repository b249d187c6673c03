// Package engine provides the puzzle state machine for the box pushing game.
//
// The engine package implements the game mechanics including:
//   - Grid-based player movement and box pushing
//   - Target tracking and win evaluation
//   - Level progression through a level catalog
//   - Outcome events for presentation layers
//   - Read-only queries and JSON snapshots
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by PuzzleEngine. Every command returns the ordered list of
// Outcome values it produced; the same outcomes are delivered synchronously
// to subscribed listeners. Blocked moves are outcomes, not errors.
//
// Usage:
//
//	e := engine.New(catalog.Builtin())
//	if _, err := e.LoadLevel(0); err != nil {
//		log.Fatal(err)
//	}
//
//	outcomes, err := e.Move(engine.Down)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, o := range outcomes {
//		fmt.Println(o.Kind)
//	}
//
// Game Rules:
//
// The player walks one cell per move inside a rectangular grid. Walking into
// a box pushes it one cell further in the same direction, unless that cell
// is outside the grid or holds another box. A level is won once every box
// rests on a target. The engine never advances on its own: callers react to
// a level_won outcome by calling Advance or LoadLevel.
//
// PuzzleEngine is not safe for concurrent use. Callers serialize access.
package engine
