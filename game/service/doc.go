// Package service provides the business logic layer for the box pushing game.
//
// The service package implements:
//   - Multi-session game management
//   - Level pack selection
//   - A single serialized command queue for keyboard, voice and API input
//   - Timed level advancement after a win
//   - Result fan-out to publishers (WebSocket hub, journal)
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PackManager loads level packs. Publisher receives every CommandResult,
// including the ones produced by scheduled transitions.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. One service-wide mutex serializes every engine operation,
// so a voice command and a key press can never mutate the same session at
// the same time. Each session owns its own engine and narrator.
//
// The engine never schedules anything. When a command wins a level the
// service arms a cancellable timer that calls Advance after AdvanceDelay;
// after the last level it can return to level one after VictoryDelay. Any
// explicit restart or level load, deleting the session, or closing the
// service cancels the pending timer.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	packMgr, _ := catalog.NewManager("levels", logger)
//	gameService := service.NewGameService(sessionMgr, packMgr, service.DefaultOptions())
//	defer gameService.Close()
//
//	// Create a new session on the built-in levels
//	info, err := gameService.CreateSession(ctx, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Send input
//	result, err := gameService.Key(ctx, info.ID, "ArrowDown")
//	result, err = gameService.Voice(ctx, info.ID, "move left")
package service
