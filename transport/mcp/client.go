package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/boxpush/game/announce"
	"github.com/wricardo/mcp-training/boxpush/game/catalog"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
	"github.com/wricardo/mcp-training/boxpush/game/service"
	"github.com/wricardo/mcp-training/boxpush/journal"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Box Push",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Box Push - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push every box ($) onto a target (.) to solve a level. Solve every level of the pack to win.

AVAILABLE TOOLS:
- create_session: Create a new game session (optionally choosing a level pack)
- list_sessions / get_session: Inspect sessions
- game_state: Grid, HUD and possible moves
- move / bulk_move: Move the player (up/down/left/right) - requires intent explanation
- restart_level: Restart the current level
- load_level: Jump to a level (1-based)
- voice_command: Send a spoken phrase such as "move up" or "status"
- list_packs: Level packs available on the server
- level_results: Solved levels recorded by the server
- game_instructions: Rules, legend and controls

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session and load its first level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"pack_id": map[string]interface{}{
					"type":        "string",
					"description": "Level pack to play (optional, see list_packs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current grid, HUD and possible moves",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell, pushing a box if one is in the way",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple moves in sequence, stopping once the level is solved",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_level",
		Description: "Restart the current level from its initial layout",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "load_level",
		Description: "Load a level of the session's pack",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"level": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"description": "Level number, starting at 1",
				},
			},
			Required: []string{"session_id", "level"},
		},
	}, c.handleLoadLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "voice_command",
		Description: "Send a spoken phrase, e.g. \"move up\", \"restart\", \"status\", \"level two\"",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Transcript of what was said",
				},
			},
			Required: []string{"session_id", "text"},
		},
	}, c.handleVoiceCommand)

	// Packs and results
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_packs",
		Description: "List available level packs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPacks)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "level_results",
		Description: "List solved levels with their move counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Only results of this session (optional)",
				},
				"pack_id": map[string]interface{}{
					"type":        "string",
					"description": "Only results of this pack (optional)",
				},
			},
		},
	}, c.handleLevelResults)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules, grid legend and controls",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiCall makes an HTTP request to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	packID, _ := args["pack_id"].(string)

	body := map[string]string{}
	if packID != "" {
		body["pack_id"] = packID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created session: %s\nPack: %s (%s)\n\n", info.ID, info.PackName, info.PackID)
	b.WriteString(formatSnapshot(info.State))
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(resp.Sessions) == 0 {
		return mcp.NewToolResultText("No active sessions"), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", len(resp.Sessions))
	for _, s := range resp.Sessions {
		b.WriteString("- " + formatSessionInfo(s) + "\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info) + "\n\n" + formatSnapshot(info.State)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	var result service.CommandResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), map[string]string{"direction": direction}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	var moves []string
	switch raw := args["moves"].(type) {
	case []interface{}:
		for _, m := range raw {
			if s, ok := m.(string); ok {
				moves = append(moves, s)
			}
		}
	case []string:
		moves = raw
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("moves must be a non-empty array of directions"), nil
	}

	var result service.CommandResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), map[string][]string{"moves": moves}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleLoadLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	// JSON numbers arrive as float64.
	level, ok := args["level"].(float64)
	if !ok || level < 1 || level != float64(int(level)) {
		return mcp.NewToolResultError("level must be a whole number starting at 1"), nil
	}

	var result service.CommandResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/level"), map[string]int{"index": int(level) - 1}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleVoiceCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	text, _ := args["text"].(string)

	var result service.CommandResult
	err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/command"), map[string]string{"text": text}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatResult(&result)), nil
}

func (c *Client) handleListPacks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var packs []*catalog.PackInfo
	if err := c.apiCall(ctx, "GET", "/api/packs", nil, &packs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available level packs:\n")
	for _, p := range packs {
		fmt.Fprintf(&b, "- %s: %s (%d levels)", p.ID, p.Name, p.LevelCount)
		if p.Description != "" {
			fmt.Fprintf(&b, " - %s", p.Description)
		}
		b.WriteString("\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleLevelResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	q := url.Values{}
	if s, _ := args["session_id"].(string); s != "" {
		q.Set("session", s)
	}
	if p, _ := args["pack_id"].(string); p != "" {
		q.Set("pack", p)
	}
	path := "/api/results"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp struct {
		Results []journal.LevelResult `json:"results"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(resp.Results) == 0 {
		return mcp.NewToolResultText("No solved levels recorded"), nil
	}

	var b strings.Builder
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "%s session=%s pack=%s level %d (%s): %d moves\n",
			r.CompletedAt.Format(time.RFC3339), r.SessionID, r.PackID, r.LevelIndex+1, r.LevelName, r.MoveCount)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions()), nil
}

func gameInstructions() string {
	return fmt.Sprintf(`Box Push - Complete Instructions

GAME OBJECTIVE:
Push every box onto a target. A level is solved the moment the last box lands on a target;
the next level loads a few seconds later. Solving the last level wins the pack.

GRID LEGEND:
  %c  floor
  %c  target
  %c  player
  %c  player standing on a target
  %c  box
  %c  box on a target

Row 1 is the top row, column 1 the leftmost column.

RULES:
- You move one cell up, down, left or right.
- Walking into a box pushes it one cell, if the cell behind it is free floor or target.
- You can not pull boxes, push two boxes at once, or push a box off the grid.
- Blocked moves change nothing and do not count as moves.
- A box pushed into a corner that is not a target can never be moved out again: restart.

MOVEMENT COMMANDS:
- move / bulk_move with up, down, left, right
- restart_level to reset the current level
- load_level to jump to a level (1-based)
- voice_command for spoken phrases

SPOKEN HELP (what a player hears):
%s`,
		engine.GlyphFloor, engine.GlyphTarget, engine.GlyphPlayer, engine.GlyphPlayerOnTarget,
		engine.GlyphBox, engine.GlyphBoxOnTarget, announce.Instructions())
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	line := fmt.Sprintf("%s pack=%s", info.ID, info.PackID)
	if len(info.HUD) > 0 {
		line += " | " + strings.Join(info.HUD, " | ")
	}
	if info.State != nil {
		line += " | " + info.State.State.String()
	}
	return line
}

func formatSnapshot(state *engine.Snapshot) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	switch state.State {
	case engine.StateUninitialized:
		return "No level loaded"
	case engine.StateAllLevelsComplete:
		fmt.Fprintf(&b, "🎉 VICTORY! All %d levels complete.\n", state.LevelCount)
		return b.String()
	}

	fmt.Fprintf(&b, "Level %d/%d: %s | Moves: %d | Boxes: %d/%d\n",
		state.LevelIndex+1, state.LevelCount, state.LevelName,
		state.MoveCount, state.BoxesOnTarget, state.BoxCount)
	if state.Player != nil {
		fmt.Fprintf(&b, "Player: row %d, column %d\n", state.Player.Row+1, state.Player.Col+1)
	}
	b.WriteString("\n")
	for _, row := range state.Rows {
		b.WriteString(row + "\n")
	}

	if state.State == engine.StateWon {
		b.WriteString("\n✓ LEVEL SOLVED\n")
	} else if len(state.PossibleMoves) > 0 {
		moves := make([]string, len(state.PossibleMoves))
		for i, d := range state.PossibleMoves {
			moves[i] = string(d)
		}
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(moves, ", "))
	} else {
		b.WriteString("\nNo possible moves: restart the level\n")
	}
	return b.String()
}

// formatResult lists what a command did, then the state after it.
func formatResult(result *service.CommandResult) string {
	var b strings.Builder
	for _, o := range result.Outcomes {
		b.WriteString(formatOutcome(o) + "\n")
	}
	for _, cue := range result.Cues {
		if cue.Kind == "" && cue.Text != "" {
			fmt.Fprintf(&b, "Says: %s\n", cue.Text)
		}
	}
	if result.Scheduled != nil {
		fmt.Fprintf(&b, "Next: %s in %dms\n", result.Scheduled.Action, result.Scheduled.DelayMS)
	}
	if t := result.Truncated; t != nil {
		fmt.Fprintf(&b, "⚠ Only the first %d of %d moves ran, %d skipped\n", t.Limit, t.Requested, t.Skipped)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}

func formatOutcome(o engine.Outcome) string {
	switch o.Kind {
	case engine.OutcomeLevelLoaded:
		return fmt.Sprintf("Loaded level %d: %s (%d boxes)", o.LevelIndex+1, o.LevelName, o.BoxCount)
	case engine.OutcomePlayerMoved:
		return fmt.Sprintf("✓ Moved %s to %s", o.Direction, o.To)
	case engine.OutcomeBoxMoved:
		return fmt.Sprintf("✓ Pushed box %s to %s", o.Direction, o.To)
	case engine.OutcomeBoxPlaced:
		return fmt.Sprintf("Box on target (%d/%d)", o.BoxesOnTarget, o.TotalBoxes)
	case engine.OutcomeBoxRemoved:
		return fmt.Sprintf("Box off target (%d/%d)", o.BoxesOnTarget, o.TotalBoxes)
	case engine.OutcomeBlocked:
		return fmt.Sprintf("✗ Blocked %s: %s", o.Direction, o.Reason)
	case engine.OutcomeLevelWon:
		return fmt.Sprintf("🎉 Level %d solved in %d moves", o.LevelIndex+1, o.MoveCount)
	case engine.OutcomeVictory:
		return fmt.Sprintf("🏆 All %d levels complete", o.LevelCount)
	default:
		return string(o.Kind)
	}
}
