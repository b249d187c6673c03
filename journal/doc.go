// Package journal records every command result a game service publishes.
//
// Two stores are written by one background goroutine:
//
//   - a stream of JSON lines, zstd-compressed and rotated hourly, holding one
//     Entry per published result (events-YYYY-MM-DD-HH.jsonl.zst)
//   - a SQLite index (journal.db) with one row per process run and one row
//     per solved level, queried by Results
//
// The journal is history only. Nothing in it is read back into a session.
//
// Usage:
//
//	j, err := journal.Open("./data/journal", logger)
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//	gameService.AddPublisher(j)
//
//	results, err := j.Results(ctx, journal.ResultQuery{PackID: "builtin", Limit: 20})
package journal
