package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/boxpush/api"
	"github.com/wricardo/mcp-training/boxpush/config"
	"github.com/wricardo/mcp-training/boxpush/game/catalog"
	"github.com/wricardo/mcp-training/boxpush/game/service"
	"github.com/wricardo/mcp-training/boxpush/game/session"
	"github.com/wricardo/mcp-training/boxpush/journal"
	"github.com/wricardo/mcp-training/boxpush/logging"
	"github.com/wricardo/mcp-training/boxpush/transport/mcp"
	"github.com/wricardo/mcp-training/boxpush/transport/websocket"
)

// services is everything a running server owns.
type services struct {
	cfg      *config.Config
	logger   *slog.Logger
	packs    *catalog.Manager
	sessions *session.Manager
	game     service.GameService
	hub      *websocket.Hub
	journal  *journal.Journal
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// initializeServices wires packs, sessions, the game service, the WebSocket
// hub and the journal. Background routines stop when Close is called.
func initializeServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services, error) {
	packs, err := openPacks(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := packs.SetDefault(cfg.DefaultPack); err != nil {
		logger.Warn("default pack unavailable, using built-in levels", "pack", cfg.DefaultPack, "error", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &services{
		cfg:      cfg,
		logger:   logger,
		packs:    packs,
		sessions: session.NewManager(),
		cancel:   cancel,
	}

	if cfg.WatchLevels {
		if err := packs.Watch(ctx); err != nil {
			logger.Warn("level pack watcher disabled", "error", err)
		}
	}

	s.game = service.NewGameService(s.sessions, packs, cfg.ServiceOptions(logger))

	s.hub = websocket.NewHub(s.game, logger)
	s.game.AddPublisher(s.hub)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(ctx)
	}()

	if cfg.JournalDir != "" {
		j, err := journal.Open(cfg.JournalDir, logger)
		if err != nil {
			cancel()
			s.game.Close()
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		s.journal = j
		s.game.AddPublisher(j)
		logger.Info("journal enabled", "dir", j.Dir(), "run", j.RunID())
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sessionCleanupRoutine(ctx, s.game, cfg.CleanupInterval, cfg.SessionMaxAge, logger)
	}()

	return s, nil
}

// openPacks opens the levels directory, serving only the built-in pack
// when it does not exist.
func openPacks(cfg *config.Config, logger *slog.Logger) (*catalog.Manager, error) {
	dir := cfg.LevelsDir
	if dir != "" {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			logger.Warn("levels directory not found, serving built-in levels only", "dir", dir)
			dir = ""
		}
	}
	packs, err := catalog.NewManager(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create pack manager: %w", err)
	}
	return packs, nil
}

// handler combines the REST API, the WebSocket endpoint and /mcp.
func (s *services) handler(baseURL string) http.Handler {
	var results api.ResultStore
	if s.journal != nil {
		results = s.journal
	}
	apiServer := api.NewServer(s.game, s.hub, results, s.logger)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL)))
	return mainRouter
}

// Close stops background routines, the game service and the journal.
func (s *services) Close() error {
	s.cancel()
	s.wg.Wait()
	err := s.game.Close()
	if s.journal != nil {
		err = errors.Join(err, s.journal.Close())
	}
	return err
}

// mcpHandler serves MCP JSON-RPC messages over HTTP POST.
func mcpHandler(client *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := client.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within maxAge.
func sessionCleanupRoutine(ctx context.Context, game service.GameService, interval, maxAge time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := game.CleanupExpiredSessions(maxAge); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("ngrok") {
		cfg.Ngrok.Enabled = true
	}
	if cmd.IsSet("ngrok-auth") {
		cfg.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		cfg.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runHTTPServer(ctx, cfg, logger)
}

// runHTTPServer serves until ctx is done, then shuts down gracefully. If
// ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting", "app", AppName, "version", Version)

	svcs, err := initializeServices(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	addr := cfg.Addr()
	mainRouter := svcs.handler("http://" + addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     log.New(logging.NewWriter(logger, slog.LevelWarn, "http server"), "", 0),
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening", "addr", addr)
		logger.Info("endpoints",
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cfg.Ngrok, mainRouter, logger)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("HTTP server failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("HTTP server shutdown error", "error", shutdownErr)
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
func runNgrok(ctx context.Context, cfg config.Ngrok, handler http.Handler, logger *slog.Logger) {
	authToken := cfg.Token()
	if authToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("using custom ngrok domain", "domain", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", "error", err)
		}
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		logger.Error("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("api-url") {
		cfg.APIURL = cmd.String("api-url")
	}
	return runStdioMCP(ctx, cfg, logger)
}

// runStdioMCP runs an MCP stdio server. It reuses the API at cfg.APIURL when
// one answers, otherwise it starts an internal HTTP API on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	baseURL := cfg.APIURL
	logger.Info("checking for external API server", "url", baseURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Info("external API server found, using it for MCP", "url", baseURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		svcs, err := initializeServices(ctx, cfg, logger)
		if err != nil {
			listener.Close()
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer svcs.Close()

		httpServer := &http.Server{
			Handler:  svcs.handler(baseURL),
			ErrorLog: log.New(logging.NewWriter(logger, slog.LevelWarn, "internal http server"), "", 0),
		}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		logger.Info("internal HTTP server started", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
