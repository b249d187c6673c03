package api

import (
	"net/http"
	"time"

	"github.com/wricardo/mcp-training/boxpush/game/engine"
	"github.com/wricardo/mcp-training/boxpush/game/service"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests logs one line per request. WebSocket upgrades are passed
// through untouched so the connection can be hijacked.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// logResult writes a compact line per move command.
func (s *Server) logResult(result *service.CommandResult) {
	var blocked, pushed int
	for _, o := range result.Outcomes {
		switch o.Kind {
		case engine.OutcomeBlocked:
			blocked++
		case engine.OutcomeBoxMoved:
			pushed++
		}
	}
	attrs := []any{
		"session", result.SessionID,
		"outcomes", len(result.Outcomes),
		"pushed", pushed,
		"blocked", blocked,
	}
	if result.State != nil {
		attrs = append(attrs,
			"moves", result.State.MoveCount,
			"on_target", result.State.BoxesOnTarget,
			"boxes", result.State.BoxCount,
			"state", result.State.State.String())
	}
	s.logger.Info("move", attrs...)
}
