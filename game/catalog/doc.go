// Package catalog provides the level catalog for the box pushing puzzle.
//
// The catalog package handles:
//   - Level definitions (name plus a rectangular grid of cell codes)
//   - Eager validation of every level when a catalog is built
//   - The built-in reference levels
//   - Level pack files (YAML or JSON) checked against a JSON Schema
//   - A directory-backed pack manager with caching and hot reload
//
// Cell Codes:
//
// Each grid cell holds exactly one code: 0 for an empty floor cell, 1 for the
// player start, 2 for a box and 3 for a target. A level must declare exactly
// one player cell and may hold any number of boxes and targets.
//
// Usage:
//
//	cat, err := catalog.New([]catalog.LevelDefinition{
//		{Name: "Tiny", Grid: [][]catalog.Cell{{1, 2, 3}}},
//	})
//	if err != nil {
//		log.Fatal(err) // wraps catalog.ErrInvalidLevelDefinition
//	}
//
//	level, err := cat.Get(0)
//
// A Catalog never changes after construction. Get hands out deep copies so
// callers can not alter the definitions the engine restarts from.
package catalog
