package journal

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/boxpush/game/engine"
	"github.com/wricardo/mcp-training/boxpush/game/service"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("journal closed")

const (
	indexFile    = "journal.db"
	streamDir    = "events"
	streamPrefix = "events"
	queueSize    = 4096
)

// Entry is one line of the stream.
type Entry struct {
	RunID      string           `json:"run_id"`
	Seq        uint64           `json:"seq"`
	SessionID  string           `json:"session_id"`
	PackID     string           `json:"pack_id"`
	Source     service.Source   `json:"source"`
	Command    string           `json:"command,omitempty"`
	Outcomes   []engine.Outcome `json:"outcomes"`
	State      engine.State     `json:"state"`
	LevelIndex int              `json:"level_index"`
	MoveCount  int              `json:"move_count"`
	Time       time.Time        `json:"time"`
}

type request struct {
	result  *service.CommandResult
	flushed chan struct{}
}

// Journal is a service.Publisher that persists command results.
type Journal struct {
	runID  string
	dir    string
	stream *StreamWriter
	index  *Index
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan request
	wg     sync.WaitGroup
	seq    uint64
}

// Open creates dir if needed, opens the index and starts a new run.
func Open(dir string, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index, err := OpenIndex(filepath.Join(dir, indexFile))
	if err != nil {
		return nil, err
	}

	j := &Journal{
		runID:  uuid.NewString(),
		dir:    dir,
		stream: NewStreamWriter(filepath.Join(dir, streamDir), streamPrefix),
		index:  index,
		logger: logger.With("component", "journal"),
		ch:     make(chan request, queueSize),
	}
	run := Run{RunID: j.runID, StartedAt: time.Now(), StreamDir: filepath.Join(dir, streamDir)}
	if err := index.StartRun(context.Background(), run); err != nil {
		_ = index.Close()
		return nil, err
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.loop()
	}()
	j.logger.Info("journal opened", "dir", dir, "run", j.runID)
	return j, nil
}

// RunID identifies this process run in the index.
func (j *Journal) RunID() string { return j.runID }

// Dir is the journal directory.
func (j *Journal) Dir() string { return j.dir }

// Publish queues result for writing. Results are dropped, with a warning,
// while the queue is full.
func (j *Journal) Publish(sessionID string, result *service.CommandResult) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}
	select {
	case j.ch <- request{result: result}:
	default:
		j.logger.Warn("journal queue full, result dropped", "session", sessionID)
	}
}

// Flush waits until everything published so far is written.
func (j *Journal) Flush(ctx context.Context) error {
	done := make(chan struct{})
	j.mu.RLock()
	if j.closed {
		j.mu.RUnlock()
		return ErrClosed
	}
	select {
	case j.ch <- request{flushed: done}:
	case <-ctx.Done():
		j.mu.RUnlock()
		return ctx.Err()
	}
	j.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results queries solved levels.
func (j *Journal) Results(ctx context.Context, q ResultQuery) ([]LevelResult, error) {
	return j.index.Results(ctx, q)
}

// Runs lists recent runs.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	return j.index.Runs(ctx, limit)
}

// Close drains the queue, ends the run and closes both stores.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.ch)
	j.mu.Unlock()

	j.wg.Wait()

	err := j.index.EndRun(context.Background(), j.runID, time.Now())
	err = errors.Join(err, j.stream.Close(), j.index.Close())
	j.logger.Info("journal closed", "run", j.runID, "entries", j.seq)
	return err
}

func (j *Journal) loop() {
	for req := range j.ch {
		if req.flushed != nil {
			close(req.flushed)
			continue
		}
		j.record(req.result)
	}
}

// record writes one result. Runs on the loop goroutine only.
func (j *Journal) record(result *service.CommandResult) {
	j.seq++
	entry := Entry{
		RunID:     j.runID,
		Seq:       j.seq,
		SessionID: result.SessionID,
		PackID:    result.PackID,
		Source:    result.Source,
		Outcomes:  result.Outcomes,
		Time:      result.Timestamp,
	}
	if result.Command != nil {
		entry.Command = result.Command.String()
	}
	if result.State != nil {
		entry.State = result.State.State
		entry.LevelIndex = result.State.LevelIndex
		entry.MoveCount = result.State.MoveCount
	}
	if err := j.stream.Write(entry); err != nil {
		j.logger.Error("journal stream write failed", "error", err)
	}

	for _, o := range result.Outcomes {
		if o.Kind != engine.OutcomeLevelWon {
			continue
		}
		r := LevelResult{
			RunID:       j.runID,
			SessionID:   result.SessionID,
			PackID:      result.PackID,
			LevelIndex:  o.LevelIndex,
			LevelName:   o.LevelName,
			MoveCount:   o.MoveCount,
			CompletedAt: result.Timestamp,
		}
		if result.State != nil && result.State.LevelIndex == o.LevelIndex {
			r.Moves = joinMoves(result.State.History)
		}
		if err := j.index.RecordResult(context.Background(), r); err != nil {
			j.logger.Error("journal index write failed", "error", err)
			continue
		}
		j.logger.Debug("level result recorded", "session", r.SessionID, "level", r.LevelIndex, "moves", r.MoveCount)
	}
}

func joinMoves(history []engine.Direction) string {
	parts := make([]string, len(history))
	for i, d := range history {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}
