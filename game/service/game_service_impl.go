package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/boxpush/game/announce"
	"github.com/wricardo/mcp-training/boxpush/game/catalog"
	"github.com/wricardo/mcp-training/boxpush/game/command"
	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

// MaxBulkMoves caps the number of moves a single BulkMove call executes.
const MaxBulkMoves = 50

var ErrServiceClosed = errors.New("game service closed")

// Options tune the service.
type Options struct {
	// AutoAdvance enables timed transitions after a win.
	AutoAdvance  bool
	AdvanceDelay time.Duration
	// RestartAfterVictory returns to level one VictoryDelay after the last
	// level is won.
	RestartAfterVictory bool
	VictoryDelay        time.Duration

	Logger *slog.Logger
}

// DefaultOptions returns the reference timings: three seconds to the next
// level, five seconds from victory back to level one.
func DefaultOptions() Options {
	return Options{
		AutoAdvance:         true,
		AdvanceDelay:        3 * time.Second,
		RestartAfterVictory: true,
		VictoryDelay:        5 * time.Second,
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions   SessionManager
	packs      PackManager
	opts       Options
	logger     *slog.Logger
	publishers []Publisher
	closed     bool
	mu         sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, packs PackManager, opts Options) GameService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &gameServiceImpl{
		sessions: sessions,
		packs:    packs,
		opts:     opts,
		logger:   logger.With("component", "service"),
	}
}

// AddPublisher registers a publisher for every later command result.
func (s *gameServiceImpl) AddPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishers = append(s.publishers, p)
}

// CreateSession creates a new game session and loads the first level
func (s *gameServiceImpl) CreateSession(ctx context.Context, packID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrServiceClosed
	}

	var pack *catalog.Pack
	if packID == "" {
		pack = s.packs.Default()
	} else {
		var err error
		pack, err = s.packs.LoadPack(packID)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, catalog.ErrPackNotFound) {
				if available, listErr := s.packs.ListPacks(); listErr == nil && len(available) > 0 {
					ids := make([]string, 0, len(available))
					for _, info := range available {
						ids = append(ids, info.ID)
					}
					return nil, fmt.Errorf("%w: %q, available packs: %s", catalog.ErrPackNotFound, packID, strings.Join(ids, ", "))
				}
			}
			return nil, err
		}
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", pack)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.unsubscribe = sess.Engine.Subscribe(s.traceOutcome(sess.ID))

	outcomes, err := sess.Engine.LoadLevel(0)
	if err != nil {
		s.release(sess)
		s.sessions.Delete(sess.ID)
		return nil, fmt.Errorf("failed to load first level: %w", err)
	}

	result := s.newResult(sess, SourceSession, nil, []announce.Cue{sess.Narrator.Say(announce.Welcome(), false)}, outcomes)
	s.afterOutcomes(sess, result)
	s.publish(result)

	s.logger.Info("session created", "session", sess.ID, "pack", pack.ID, "levels", pack.Levels.Count())

	info := s.sessionInfo(sess)
	info.Cues = result.Cues
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and cancels its pending transition
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return err
	}
	s.release(sess)

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session", sess.ID)
	return nil
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*CommandResult, error) {
	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, sessionID, command.Move(d), SourceAPI)
}

// BulkMove executes multiple moves in sequence, stopping once the level is
// won. At most MaxBulkMoves moves run.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*CommandResult, error) {
	directions := make([]engine.Direction, 0, len(moves))
	for _, m := range moves {
		d, err := engine.ParseDirection(m)
		if err != nil {
			return nil, err
		}
		directions = append(directions, d)
	}
	var skipped int
	if len(directions) > MaxBulkMoves {
		s.logger.Warn("bulk move truncated", "session", sessionID, "requested", len(directions), "limit", MaxBulkMoves)
		skipped = len(directions) - MaxBulkMoves
		directions = directions[:MaxBulkMoves]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	outcomes, err := sess.Engine.BulkMove(directions)
	if err != nil {
		return nil, err
	}

	result := s.newResult(sess, SourceAPI, nil, nil, outcomes)
	if skipped > 0 {
		result.Truncated = &Truncation{Limit: MaxBulkMoves, Requested: len(moves), Skipped: skipped}
	}
	s.afterOutcomes(sess, result)
	s.publish(result)
	return result, nil
}

// Restart restarts the current level
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.Execute(ctx, sessionID, command.Command{Kind: command.KindRestart}, SourceAPI)
}

// LoadLevel loads a level by 0-based index
func (s *gameServiceImpl) LoadLevel(ctx context.Context, sessionID string, index int) (*CommandResult, error) {
	return s.Execute(ctx, sessionID, command.LoadLevel(index), SourceAPI)
}

// Voice parses a speech transcript and executes it
func (s *gameServiceImpl) Voice(ctx context.Context, sessionID, transcript string) (*CommandResult, error) {
	cmd, err := command.ParseVoice(transcript)
	if err != nil {
		s.logger.Debug("voice command not recognized", "session", sessionID, "transcript", transcript)
		return nil, err
	}
	return s.Execute(ctx, sessionID, cmd, SourceVoice)
}

// Key parses a key name and executes it
func (s *gameServiceImpl) Key(ctx context.Context, sessionID, key string) (*CommandResult, error) {
	cmd, err := command.ParseKey(key)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, sessionID, cmd, SourceKey)
}

// Execute runs one command against a session. Every input path ends here.
func (s *gameServiceImpl) Execute(ctx context.Context, sessionID string, cmd command.Command, source Source) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.execute(sess, cmd, source)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("command executed",
		"session", sess.ID,
		"command", cmd.String(),
		"source", source,
		"outcomes", len(result.Outcomes),
		"state", sess.Engine.State().String())

	s.afterOutcomes(sess, result)
	s.publish(result)
	return result, nil
}

// execute dispatches cmd. Caller holds s.mu.
func (s *gameServiceImpl) execute(sess *Session, cmd command.Command, source Source) (*CommandResult, error) {
	var (
		outcomes []engine.Outcome
		cues     []announce.Cue
		err      error
	)

	switch cmd.Kind {
	case command.KindMove:
		outcomes, err = sess.Engine.Move(cmd.Direction)

	case command.KindRestart:
		// After the last level, restarting replays the game from level one.
		if sess.Engine.State() == engine.StateAllLevelsComplete {
			outcomes, err = sess.Engine.LoadLevel(0)
		} else {
			outcomes, err = sess.Engine.Restart()
		}
		if err == nil {
			s.cancelPending(sess)
			cues = append(cues, sess.Narrator.Say("Restarting level", false))
		}

	case command.KindLoadLevel:
		outcomes, err = sess.Engine.LoadLevel(cmd.Level)
		if err == nil {
			s.cancelPending(sess)
		}

	case command.KindHelp:
		cues = append(cues, sess.Narrator.Say(announce.Instructions(), false))

	case command.KindStatus:
		cues = append(cues, sess.Narrator.Say(announce.Status(sess.Engine), false))

	case command.KindToggleVoice:
		cues = append(cues, sess.Narrator.ToggleVoice())

	case command.KindTogglePanel:
		sess.PanelVisible = !sess.PanelVisible

	default:
		return nil, fmt.Errorf("%w: kind %q", command.ErrUnrecognized, cmd.Kind)
	}

	if err != nil {
		return nil, err
	}

	return s.newResult(sess, source, &cmd, cues, outcomes), nil
}

// GetState returns the engine snapshot of a session
func (s *gameServiceImpl) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// Status returns the spoken status of a session without publishing it
func (s *gameServiceImpl) Status(ctx context.Context, sessionID string) (*StatusResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return &StatusResult{
		SessionID: sess.ID,
		Text:      announce.Status(sess.Engine),
		HUD:       announce.HUD(sess.Engine),
		State:     sess.Engine.Snapshot(),
	}, nil
}

// ListPacks returns all available level packs
func (s *gameServiceImpl) ListPacks(ctx context.Context) ([]*catalog.PackInfo, error) {
	return s.packs.ListPacks()
}

// LoadPack loads and validates a level pack
func (s *gameServiceImpl) LoadPack(ctx context.Context, packID string) (*catalog.PackInfo, error) {
	pack, err := s.packs.LoadPack(packID)
	if err != nil {
		return nil, err
	}
	return pack.Info(), nil
}

// CleanupExpiredSessions removes idle sessions and cancels their timers
func (s *gameServiceImpl) CleanupExpiredSessions(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for _, sess := range s.sessions.List() {
		if sess.LastAccessedAt.Before(cutoff) {
			s.release(sess)
		}
	}

	removed := s.sessions.CleanupExpiredSessions(maxAge)
	if removed > 0 {
		s.logger.Info("expired sessions removed", "count", removed)
	}
	return removed
}

// Close cancels every pending transition. Later calls fail with
// ErrServiceClosed.
func (s *gameServiceImpl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	for _, sess := range s.sessions.List() {
		s.cancelPending(sess)
	}
	return nil
}

// session looks up a live session and marks it accessed. Caller holds the
// write lock on s.mu.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	if s.closed {
		return nil, ErrServiceClosed
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// traceOutcome logs every outcome the session's engine emits.
func (s *gameServiceImpl) traceOutcome(sessionID string) engine.Listener {
	return func(o engine.Outcome) {
		s.logger.Debug("outcome", "session", sessionID, "kind", o.Kind, "level", o.LevelIndex, "moves", o.MoveCount)
	}
}

// release cancels the pending transition of a session that is going away
// and detaches its outcome listener. Caller holds s.mu.
func (s *gameServiceImpl) release(sess *Session) {
	s.cancelPending(sess)
	if sess.unsubscribe != nil {
		sess.unsubscribe()
		sess.unsubscribe = nil
	}
}

// newResult assembles a command result, narrating outcomes after any
// leading cues. Caller holds s.mu.
func (s *gameServiceImpl) newResult(sess *Session, source Source, cmd *command.Command, cues []announce.Cue, outcomes []engine.Outcome) *CommandResult {
	if outcomes == nil {
		outcomes = []engine.Outcome{}
	}
	all := append([]announce.Cue{}, cues...)
	all = append(all, sess.Narrator.Cues(outcomes)...)

	return &CommandResult{
		SessionID:    sess.ID,
		PackID:       sess.PackID,
		Source:       source,
		Command:      cmd,
		Outcomes:     outcomes,
		Cues:         all,
		HUD:          announce.HUD(sess.Engine),
		VoiceEnabled: sess.Narrator.VoiceEnabled,
		PanelVisible: sess.PanelVisible,
		State:        sess.Engine.Snapshot(),
		Timestamp:    time.Now(),
	}
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		PackID:         sess.PackID,
		PackName:       sess.PackName,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		VoiceEnabled:   sess.Narrator.VoiceEnabled,
		PanelVisible:   sess.PanelVisible,
		HUD:            announce.HUD(sess.Engine),
		State:          sess.Engine.Snapshot(),
	}
}

// publish fans a result out to every publisher. Caller holds s.mu.
func (s *gameServiceImpl) publish(result *CommandResult) {
	for _, p := range s.publishers {
		p.Publish(result.SessionID, result)
	}
}
