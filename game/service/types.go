package service

import (
	"time"

	"github.com/wricardo/mcp-training/boxpush/game/announce"
	"github.com/wricardo/mcp-training/boxpush/game/command"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

// Source records which input produced a command result.
type Source string

const (
	SourceAPI       Source = "api"
	SourceKey       Source = "key"
	SourceVoice     Source = "voice"
	SourceWebSocket Source = "websocket"
	SourceMCP       Source = "mcp"
	SourceScheduler Source = "scheduler"
	SourceSession   Source = "session"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	PackID         string           `json:"pack_id"`
	PackName       string           `json:"pack_name"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	VoiceEnabled   bool             `json:"voice_enabled"`
	PanelVisible   bool             `json:"panel_visible"`
	HUD            []string         `json:"hud"`
	State          *engine.Snapshot `json:"state"`

	// Cues is only set on creation: the welcome line and the first level.
	Cues []announce.Cue `json:"cues,omitempty"`
}

// CommandResult is everything a single command produced.
type CommandResult struct {
	SessionID    string           `json:"session_id"`
	PackID       string           `json:"pack_id"`
	Source       Source           `json:"source"`
	Command      *command.Command `json:"command,omitempty"`
	Outcomes     []engine.Outcome `json:"outcomes"`
	Cues         []announce.Cue   `json:"cues"`
	HUD          []string         `json:"hud"`
	VoiceEnabled bool             `json:"voice_enabled"`
	PanelVisible bool             `json:"panel_visible"`
	State        *engine.Snapshot `json:"state"`
	Scheduled    *Scheduled       `json:"scheduled,omitempty"`
	Truncated    *Truncation      `json:"truncated,omitempty"`
	Timestamp    time.Time        `json:"timestamp"`
}

// Truncation reports the moves a bulk move dropped past its limit.
type Truncation struct {
	Limit     int `json:"limit"`
	Requested int `json:"requested"`
	Skipped   int `json:"skipped"`
}

// Scheduled describes a pending timed transition.
type Scheduled struct {
	Action  TransitionAction `json:"action"`
	DelayMS int64            `json:"delay_ms"`
	At      time.Time        `json:"at"`
}

// StatusResult is the spoken status and HUD for a session.
type StatusResult struct {
	SessionID string           `json:"session_id"`
	Text      string           `json:"text"`
	HUD       []string         `json:"hud"`
	State     *engine.Snapshot `json:"state"`
}
