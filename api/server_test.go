package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/boxpush/game/catalog"
	"github.com/wricardo/mcp-training/boxpush/game/command"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
	"github.com/wricardo/mcp-training/boxpush/game/service"
	"github.com/wricardo/mcp-training/boxpush/game/session"
	"github.com/wricardo/mcp-training/boxpush/journal"
	"github.com/wricardo/mcp-training/boxpush/logging"
	"github.com/wricardo/mcp-training/boxpush/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	CreateSessionFunc func(ctx context.Context, packID string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	MoveFunc      func(ctx context.Context, sessionID, direction string) (*service.CommandResult, error)
	BulkMoveFunc  func(ctx context.Context, sessionID string, moves []string) (*service.CommandResult, error)
	RestartFunc   func(ctx context.Context, sessionID string) (*service.CommandResult, error)
	LoadLevelFunc func(ctx context.Context, sessionID string, index int) (*service.CommandResult, error)
	VoiceFunc     func(ctx context.Context, sessionID, transcript string) (*service.CommandResult, error)
	KeyFunc       func(ctx context.Context, sessionID, key string) (*service.CommandResult, error)

	GetStateFunc func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	StatusFunc   func(ctx context.Context, sessionID string) (*service.StatusResult, error)

	ListPacksFunc func(ctx context.Context) ([]*catalog.PackInfo, error)
	LoadPackFunc  func(ctx context.Context, packID string) (*catalog.PackInfo, error)
}

func okResult(sessionID string) *service.CommandResult {
	return &service.CommandResult{
		SessionID: sessionID,
		Outcomes:  []engine.Outcome{},
		State:     &engine.Snapshot{State: engine.StatePlaying},
		Timestamp: time.Now(),
	}
}

func (m *MockGameService) CreateSession(ctx context.Context, packID string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, packID)
	}
	return &service.SessionInfo{ID: "ab12", PackID: catalog.BuiltinPackID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, PackID: catalog.BuiltinPackID, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string) (*service.CommandResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string) (*service.CommandResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*service.CommandResult, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) LoadLevel(ctx context.Context, sessionID string, index int) (*service.CommandResult, error) {
	if m.LoadLevelFunc != nil {
		return m.LoadLevelFunc(ctx, sessionID, index)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) Execute(ctx context.Context, sessionID string, cmd command.Command, source service.Source) (*service.CommandResult, error) {
	return okResult(sessionID), nil
}

func (m *MockGameService) Voice(ctx context.Context, sessionID, transcript string) (*service.CommandResult, error) {
	if m.VoiceFunc != nil {
		return m.VoiceFunc(ctx, sessionID, transcript)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) Key(ctx context.Context, sessionID, key string) (*service.CommandResult, error) {
	if m.KeyFunc != nil {
		return m.KeyFunc(ctx, sessionID, key)
	}
	return okResult(sessionID), nil
}

func (m *MockGameService) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetStateFunc != nil {
		return m.GetStateFunc(ctx, sessionID)
	}
	return &engine.Snapshot{State: engine.StatePlaying}, nil
}

func (m *MockGameService) Status(ctx context.Context, sessionID string) (*service.StatusResult, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, sessionID)
	}
	return &service.StatusResult{SessionID: sessionID, Text: "Level 1. 0 of 1 boxes on target. 0 moves."}, nil
}

func (m *MockGameService) ListPacks(ctx context.Context) ([]*catalog.PackInfo, error) {
	if m.ListPacksFunc != nil {
		return m.ListPacksFunc(ctx)
	}
	return []*catalog.PackInfo{catalog.BuiltinPack().Info()}, nil
}

func (m *MockGameService) LoadPack(ctx context.Context, packID string) (*catalog.PackInfo, error) {
	if m.LoadPackFunc != nil {
		return m.LoadPackFunc(ctx, packID)
	}
	return catalog.BuiltinPack().Info(), nil
}

func (m *MockGameService) AddPublisher(p service.Publisher)                {}
func (m *MockGameService) CleanupExpiredSessions(maxAge time.Duration) int { return 0 }
func (m *MockGameService) Close() error                                    { return nil }

// fakeResults implements ResultStore
type fakeResults struct {
	last    journal.ResultQuery
	results []journal.LevelResult
	err     error
}

func (f *fakeResults) Results(ctx context.Context, q journal.ResultQuery) ([]journal.LevelResult, error) {
	f.last = q
	return f.results, f.err
}

// Test helpers
func setupTestServer(mockService *MockGameService) *Server {
	hub := websocket.NewHub(mockService, logging.Discard())
	return NewServer(mockService, hub, nil, logging.Discard())
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: %q", catalog.ErrPackNotFound, "nope"), http.StatusNotFound},
		{engine.ErrNoActiveLevel, http.StatusConflict},
		{engine.ErrOutOfRange, http.StatusBadRequest},
		{fmt.Errorf("%w: %q", engine.ErrInvalidDirection, "north-ish"), http.StatusBadRequest},
		{command.ErrUnrecognized, http.StatusBadRequest},
		{catalog.ErrInvalidPack, http.StatusBadRequest},
		{service.ErrServiceClosed, http.StatusServiceUnavailable},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:           "Create session with default pack",
			requestBody:    nil,
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with specific pack",
			requestBody: map[string]string{"pack_id": "extras"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, packID string) (*service.SessionInfo, error) {
					if packID != "extras" {
						t.Errorf("Expected pack 'extras', got %s", packID)
					}
					return &service.SessionInfo{ID: "cd34", PackID: packID}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.PackID != "extras" {
					t.Errorf("Expected pack 'extras', got %s", resp.PackID)
				}
			},
		},
		{
			name:        "Unknown pack",
			requestBody: map[string]string{"pack_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, packID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: %q, available packs: builtin", catalog.ErrPackNotFound, packID)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, packID string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				parseResponse(t, w, &resp)
				if resp["error"] != "service error" {
					t.Errorf("Expected error message 'service error', got %v", resp["error"])
				}
				if resp["code"] != float64(http.StatusInternalServerError) {
					t.Errorf("Expected code 500 in body, got %v", resp["code"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "aaaa", CreatedAt: now.Add(-3 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "bbbb", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "cccc", CreatedAt: now.Add(-1 * time.Hour), LastAccessedAt: now},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	tests := []struct {
		name      string
		query     string
		wantOrder []string
		wantTotal int
	}{
		{"default accessed desc", "", []string{"cccc", "aaaa", "bbbb"}, 3},
		{"created asc", "?sort=created&order=asc", []string{"aaaa", "bbbb", "cccc"}, 3},
		{"limit", "?sort=created&limit=1", []string{"cccc"}, 3},
		{"bad limit ignored", "?limit=zero", []string{"cccc", "aaaa", "bbbb"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(server, makeRequest("GET", "/api/sessions"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)
			if resp.Total != tt.wantTotal || resp.Count != len(tt.wantOrder) {
				t.Errorf("Expected count %d total %d, got %d %d", len(tt.wantOrder), tt.wantTotal, resp.Count, resp.Total)
			}
			for i, id := range tt.wantOrder {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("Position %d: expected %s", i, id)
				}
			}
		})
	}
}

func TestGetSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "ab12" {
				return &service.SessionInfo{ID: "ab12", HUD: []string{"Level 1/3"}}, nil
			}
			return nil, fmt.Errorf("%w: %s", session.ErrSessionNotFound, sessionID)
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("GET", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var info service.SessionInfo
	parseResponse(t, w, &info)
	if info.ID != "ab12" || len(info.HUD) != 1 {
		t.Errorf("Unexpected session info: %+v", info)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/zzzz", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	var deleted string
	mockService := &MockGameService{
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return session.ErrSessionNotFound
			}
			deleted = sessionID
			return nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("DELETE", "/api/sessions/ab12", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if deleted != "ab12" {
		t.Errorf("Expected ab12 deleted, got %q", deleted)
	}

	w = serve(server, makeRequest("DELETE", "/api/sessions/zzzz", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// Game Operation Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		moveErr        error
		expectedStatus int
	}{
		{"valid move", map[string]string{"direction": "up"}, nil, http.StatusOK},
		{"invalid body", "not an object", nil, http.StatusBadRequest},
		{"invalid direction", map[string]string{"direction": "sideways"}, fmt.Errorf("%w: %q", engine.ErrInvalidDirection, "sideways"), http.StatusBadRequest},
		{"no active level", map[string]string{"direction": "up"}, engine.ErrNoActiveLevel, http.StatusConflict},
		{"unknown session", map[string]string{"direction": "up"}, session.ErrSessionNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			mockService := &MockGameService{
				MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.CommandResult, error) {
					got = direction
					if tt.moveErr != nil {
						return nil, tt.moveErr
					}
					result := okResult(sessionID)
					result.Outcomes = []engine.Outcome{{Kind: engine.OutcomePlayerMoved, Direction: engine.Up, MoveCount: 1}}
					return result, nil
				},
			}

			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions/ab12/move", tt.body))
			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}
			if got != "up" {
				t.Errorf("Expected direction up, got %s", got)
			}
			var result service.CommandResult
			parseResponse(t, w, &result)
			if len(result.Outcomes) != 1 || result.Outcomes[0].Kind != engine.OutcomePlayerMoved {
				t.Errorf("Unexpected outcomes: %+v", result.Outcomes)
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	var got []string
	mockService := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string) (*service.CommandResult, error) {
			got = moves
			return okResult(sessionID), nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/bulk-move", map[string][]string{"moves": {"up", "left"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.Join(got, ",") != "up,left" {
		t.Errorf("Expected up,left, got %v", got)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/ab12/bulk-move", map[string][]string{"moves": {}}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty moves, got %d", w.Code)
	}
}

func TestRestart(t *testing.T) {
	mockService := &MockGameService{
		RestartFunc: func(ctx context.Context, sessionID string) (*service.CommandResult, error) {
			if sessionID == "idle" {
				return nil, engine.ErrNoActiveLevel
			}
			result := okResult(sessionID)
			result.Outcomes = []engine.Outcome{{Kind: engine.OutcomeLevelLoaded}}
			return result, nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("POST", "/api/sessions/ab12/restart", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = serve(server, makeRequest("POST", "/api/sessions/idle/restart", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", w.Code)
	}
}

func TestLoadLevel(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		wantIndex      int
	}{
		{"first level", `{"index": 0}`, http.StatusOK, 0},
		{"third level", `{"index": 2}`, http.StatusOK, 2},
		{"out of range", `{"index": 9}`, http.StatusBadRequest, 9},
		{"missing index", `{}`, http.StatusBadRequest, -1},
		{"bad json", `{`, http.StatusBadRequest, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := -1
			mockService := &MockGameService{
				LoadLevelFunc: func(ctx context.Context, sessionID string, index int) (*service.CommandResult, error) {
					got = index
					if index > 2 {
						return nil, engine.ErrOutOfRange
					}
					return okResult(sessionID), nil
				},
			}
			req := httptest.NewRequest("POST", "/api/sessions/ab12/level", strings.NewReader(tt.body))
			w := serve(setupTestServer(mockService), req)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if got != tt.wantIndex {
				t.Errorf("Expected index %d, got %d", tt.wantIndex, got)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		wantCall       string
	}{
		{"voice", map[string]string{"text": "move up"}, http.StatusOK, "voice:move up"},
		{"key", map[string]string{"key": "ArrowLeft"}, http.StatusOK, "key:ArrowLeft"},
		{"key wins over text", map[string]string{"key": "r", "text": "help"}, http.StatusOK, "key:r"},
		{"unrecognized voice", map[string]string{"text": "dance"}, http.StatusBadRequest, "voice:dance"},
		{"empty", map[string]string{}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var call string
			mockService := &MockGameService{
				VoiceFunc: func(ctx context.Context, sessionID, transcript string) (*service.CommandResult, error) {
					call = "voice:" + transcript
					if transcript == "dance" {
						return nil, fmt.Errorf("%w: %q", command.ErrUnrecognized, transcript)
					}
					return okResult(sessionID), nil
				},
				KeyFunc: func(ctx context.Context, sessionID, key string) (*service.CommandResult, error) {
					call = "key:" + key
					return okResult(sessionID), nil
				},
			}
			w := serve(setupTestServer(mockService), makeRequest("POST", "/api/sessions/ab12/command", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if call != tt.wantCall {
				t.Errorf("Expected call %q, got %q", tt.wantCall, call)
			}
		})
	}
}

func TestGetState(t *testing.T) {
	mockService := &MockGameService{
		GetStateFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			return &engine.Snapshot{
				State:     engine.StatePlaying,
				LevelName: "Level 1",
				MoveCount: 4,
				Rows:      []string{"@$.", "---"},
			}, nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var snap map[string]interface{}
	parseResponse(t, w, &snap)
	if snap["state"] != "playing" || snap["move_count"] != float64(4) {
		t.Errorf("Unexpected snapshot: %v", snap)
	}

	w = serve(server, makeRequest("GET", "/api/sessions/ab12/state?format=text", nil))
	if w.Body.String() != "@$.\n---\n" {
		t.Errorf("Unexpected text rendering: %q", w.Body.String())
	}
}

func TestStatus(t *testing.T) {
	w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/api/sessions/ab12/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var status service.StatusResult
	parseResponse(t, w, &status)
	if !strings.HasPrefix(status.Text, "Level 1.") {
		t.Errorf("Unexpected status text: %s", status.Text)
	}
}

// Level Pack Tests

func TestPacks(t *testing.T) {
	mockService := &MockGameService{
		LoadPackFunc: func(ctx context.Context, packID string) (*catalog.PackInfo, error) {
			if packID != catalog.BuiltinPackID {
				return nil, fmt.Errorf("%w: %q", catalog.ErrPackNotFound, packID)
			}
			return catalog.BuiltinPack().Info(), nil
		},
	}
	server := setupTestServer(mockService)

	w := serve(server, makeRequest("GET", "/api/packs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var packs []catalog.PackInfo
	parseResponse(t, w, &packs)
	if len(packs) != 1 || packs[0].LevelCount != 3 {
		t.Errorf("Unexpected packs: %+v", packs)
	}

	w = serve(server, makeRequest("GET", "/api/packs/builtin", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	w = serve(server, makeRequest("GET", "/api/packs/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// Journal Tests

func TestResults(t *testing.T) {
	mockService := &MockGameService{}

	w := serve(setupTestServer(mockService), makeRequest("GET", "/api/results", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a journal, got %d", w.Code)
	}

	store := &fakeResults{results: []journal.LevelResult{{SessionID: "ab12", PackID: "builtin", MoveCount: 12}}}
	server := NewServer(mockService, nil, store, logging.Discard())

	w = serve(server, makeRequest("GET", "/api/results?session=ab12&pack=builtin&limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if store.last.SessionID != "ab12" || store.last.PackID != "builtin" || store.last.Limit != 5 {
		t.Errorf("Unexpected query: %+v", store.last)
	}
	var resp struct {
		Count   int                   `json:"count"`
		Results []journal.LevelResult `json:"results"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 1 || resp.Results[0].MoveCount != 12 {
		t.Errorf("Unexpected results: %+v", resp)
	}

	w = serve(server, makeRequest("GET", "/api/results?limit=-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	w := serve(setupTestServer(&MockGameService{}), makeRequest("GET", "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Unexpected health response: %v", resp)
	}
}

func TestWebSocket(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:           "Missing session parameter",
			queryParams:    "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Invalid session",
			queryParams: "?session=invalid",
			setupMock: func(m *MockGameService) {
				m.GetSessionFunc = func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					return nil, session.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Valid session",
			queryParams:    "?session=ab12",
			expectedStatus: http.StatusSwitchingProtocols,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(mockService)
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/ws"+tt.queryParams, nil)

			if tt.expectedStatus == http.StatusSwitchingProtocols {
				req.Header.Set("Upgrade", "websocket")
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
				req.Header.Set("Sec-WebSocket-Version", "13")
			}

			server.handleWebSocket(w, req)

			// httptest.ResponseRecorder can not be hijacked, so the upgrader
			// answers 500 once it gets that far.
			if tt.expectedStatus == http.StatusSwitchingProtocols && w.Code == http.StatusInternalServerError {
				return
			}

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
