package service

import (
	"context"
	"time"

	"github.com/wricardo/mcp-training/boxpush/game/announce"
	"github.com/wricardo/mcp-training/boxpush/game/catalog"
	"github.com/wricardo/mcp-training/boxpush/game/command"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, packID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*CommandResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string) (*CommandResult, error)
	Restart(ctx context.Context, sessionID string) (*CommandResult, error)
	LoadLevel(ctx context.Context, sessionID string, index int) (*CommandResult, error)

	// Input funnel
	Execute(ctx context.Context, sessionID string, cmd command.Command, source Source) (*CommandResult, error)
	Voice(ctx context.Context, sessionID, transcript string) (*CommandResult, error)
	Key(ctx context.Context, sessionID, key string) (*CommandResult, error)

	// Game State
	GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	Status(ctx context.Context, sessionID string) (*StatusResult, error)

	// Level packs
	ListPacks(ctx context.Context) ([]*catalog.PackInfo, error)
	LoadPack(ctx context.Context, packID string) (*catalog.PackInfo, error)

	// Lifecycle
	AddPublisher(p Publisher)
	CleanupExpiredSessions(maxAge time.Duration) int
	Close() error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, pack *catalog.Pack) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) int
}

// PackManager handles level pack loading
type PackManager interface {
	LoadPack(id string) (*catalog.Pack, error)
	ListPacks() ([]*catalog.PackInfo, error)
	Default() *catalog.Pack
}

// Publisher receives every command result, in the order the service
// produced them. Publish is called with the service lock held and must not
// call back into the service.
type Publisher interface {
	Publish(sessionID string, result *CommandResult)
}

// Session represents an active game session
type Session struct {
	ID             string
	PackID         string
	PackName       string
	Engine         *engine.PuzzleEngine
	Narrator       *announce.Narrator
	PanelVisible   bool
	CreatedAt      time.Time
	LastAccessedAt time.Time

	pending     *transition
	unsubscribe func()
}
