// Package session provides in-memory session management for the box pushing
// game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager stores service.Session values. Each session owns its own puzzle
// engine bound to the level pack it was created with, plus its narrator
// settings. Sessions are never written to disk; a restarted server starts
// with no sessions.
//
// Session Identifiers:
//
// Sessions use 4-character hexadecimal IDs for easy reference, generated
// with cryptographic randomness and retried on collision. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session on the built-in levels
//	sess, err := manager.Create("", catalog.BuiltinPack())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//
//	// Drop sessions idle for an hour
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
