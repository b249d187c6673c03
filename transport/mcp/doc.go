// Package mcp exposes Box Push to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON reply is rendered as text an agent can read.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: grid rows, HUD and possible moves
//   - move, bulk_move: player movement with an optional intent
//   - restart_level, load_level: level control (levels are 1-based)
//   - voice_command: a spoken phrase, parsed by the server
//   - list_packs, level_results: level packs and solved-level history
//   - game_instructions: rules, legend and controls
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST the JSON-RPC body to GetMCPServer().HandleMessage
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
