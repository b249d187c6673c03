// Package api provides the HTTP REST API for box push sessions.
//
// The api package implements:
//   - Session management endpoints
//   - Game commands (move, restart, level selection, voice/key commands)
//   - Level pack listing
//   - Level result queries backed by the journal
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions              - Create session {"pack_id": "builtin"}
//   - GET    /api/sessions              - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}         - Session info with HUD and snapshot
//   - DELETE /api/sessions/{id}         - Delete session, disconnect its sockets
//
// Game Operations:
//   - GET  /api/sessions/{id}/state     - Snapshot (?format=text for the grid rows)
//   - GET  /api/sessions/{id}/status    - Spoken status line and HUD
//   - POST /api/sessions/{id}/move      - {"direction": "up|down|left|right"}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left"]}, stops once the level is won
//   - POST /api/sessions/{id}/restart   - Restart the current level
//   - POST /api/sessions/{id}/level     - {"index": 0} load a level (0-based)
//   - POST /api/sessions/{id}/command   - {"text": "move up"} or {"key": "ArrowUp"}
//
// Level Packs and Results:
//   - GET /api/packs                    - Available packs
//   - GET /api/packs/{id}               - One pack
//   - GET /api/results                  - Solved levels (?session=&pack=&run=&limit=)
//   - GET /api/health                   - Liveness and session count
//
// WebSocket:
//   - GET /ws?session={id}              - Live outcomes, see package websocket
//
// Every command response is a service.CommandResult: the outcomes in order,
// their cues, the HUD and the snapshot after the command. Gameplay
// rejections (walking into the edge, pushing a box into a box) are blocked
// outcomes in a 200 response, not errors.
//
// Usage:
//
//	server := api.NewServer(gameService, hub, journal, logger)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with the HTTP status code repeated in the body:
//
//	{
//	  "error": "session not found",
//	  "code": 404
//	}
//
// Unknown sessions and packs map to 404, commands without a loaded level to
// 409, malformed directions, level indexes and commands to 400, and a
// closed service to 503.
package api
