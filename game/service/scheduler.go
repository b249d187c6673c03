package service

import (
	"time"

	"github.com/wricardo/mcp-training/boxpush/game/engine"
)

// TransitionAction is what a scheduled transition does when it fires.
type TransitionAction string

const (
	// ActionAdvance loads the level after the one just won.
	ActionAdvance TransitionAction = "advance"
	// ActionReplay returns to the first level after the last one was won.
	ActionReplay TransitionAction = "replay"
)

// transition is a pending timed engine call for one session.
type transition struct {
	action TransitionAction
	at     time.Time
	timer  *time.Timer
}

// afterOutcomes arms the transition a command's outcomes call for, if any.
// Caller holds s.mu.
func (s *gameServiceImpl) afterOutcomes(sess *Session, result *CommandResult) {
	if !s.opts.AutoAdvance {
		return
	}
	for _, o := range result.Outcomes {
		switch o.Kind {
		case engine.OutcomeLevelWon:
			result.Scheduled = s.schedule(sess, ActionAdvance, s.opts.AdvanceDelay)
		case engine.OutcomeVictory:
			if s.opts.RestartAfterVictory {
				result.Scheduled = s.schedule(sess, ActionReplay, s.opts.VictoryDelay)
			}
		}
	}
}

// schedule replaces any pending transition of sess. Caller holds s.mu.
func (s *gameServiceImpl) schedule(sess *Session, action TransitionAction, delay time.Duration) *Scheduled {
	s.cancelPending(sess)

	t := &transition{action: action, at: time.Now().Add(delay)}
	sessionID := sess.ID
	t.timer = time.AfterFunc(delay, func() { s.fire(sessionID, t) })
	sess.pending = t

	s.logger.Debug("transition scheduled", "session", sessionID, "action", action, "delay", delay)
	return &Scheduled{Action: action, DelayMS: delay.Milliseconds(), At: t.at}
}

// cancelPending stops the pending transition of sess. Caller holds s.mu.
func (s *gameServiceImpl) cancelPending(sess *Session) {
	if sess.pending == nil {
		return
	}
	sess.pending.timer.Stop()
	s.logger.Debug("transition cancelled", "session", sess.ID, "action", sess.pending.action)
	sess.pending = nil
}

// fire runs a transition unless it was cancelled or replaced while waiting
// for the lock.
func (s *gameServiceImpl) fire(sessionID string, t *transition) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil || sess.pending != t {
		return
	}
	sess.pending = nil

	var result *CommandResult
	switch t.action {
	case ActionAdvance:
		outcomes, err := sess.Engine.Advance()
		if err != nil {
			s.logger.Warn("scheduled advance failed", "session", sessionID, "error", err)
			return
		}
		result = s.newResult(sess, SourceScheduler, nil, nil, outcomes)
	case ActionReplay:
		outcomes, err := sess.Engine.LoadLevel(0)
		if err != nil {
			s.logger.Warn("scheduled replay failed", "session", sessionID, "error", err)
			return
		}
		result = s.newResult(sess, SourceScheduler, nil, nil, outcomes)
	default:
		return
	}

	s.afterOutcomes(sess, result)
	s.publish(result)
}
