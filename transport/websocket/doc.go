// Package websocket provides the WebSocket transport for box push sessions.
//
// The websocket package implements:
//   - Session-aware connections (one session per connection)
//   - Broadcasting of every command result as an "outcomes" event
//   - Inbound keyboard, voice and direction commands
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub tracks clients by session. The hub is registered with the
// game service as a publisher, so results produced by REST calls, MCP tools,
// other sockets and timed level transitions all reach every client of the
// session in the order the service produced them. Each client has a read
// goroutine, which forwards inbound commands to the service, and a write
// goroutine, which drains its send buffer and keeps the connection alive
// with pings.
//
// Message Protocol:
//
//	Outgoing: {"session_id": "ab12", "event": "outcomes", "data": CommandResult}
//	          {"session_id": "ab12", "event": "state", "data": Snapshot}
//	          {"session_id": "ab12", "event": "error", "data": {"error": "..."}}
//	          {"session_id": "ab12", "event": "session_deleted"}
//	Incoming: {"type": "command", "direction": "up"}
//	          {"type": "command", "key": "ArrowUp"}
//	          {"type": "command", "text": "move up please"}
//	          {"type": "state"}
//
// Errors are sent only to the client that caused them. Successful commands
// are not answered directly; the result arrives as an outcomes event.
//
// Usage:
//
//	hub := websocket.NewHub(gameService, logger)
//	gameService.AddPublisher(hub)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//	    hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
