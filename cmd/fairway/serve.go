package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/fairwaylabs/fairway/internal/api"
	"github.com/fairwaylabs/fairway/internal/coach"
	"github.com/fairwaylabs/fairway/internal/composer"
	"github.com/fairwaylabs/fairway/internal/config"
	"github.com/fairwaylabs/fairway/internal/extract"
	"github.com/fairwaylabs/fairway/internal/ingest"
	"github.com/fairwaylabs/fairway/internal/insight"
	"github.com/fairwaylabs/fairway/internal/llm"
	"github.com/fairwaylabs/fairway/internal/profile"
	"github.com/fairwaylabs/fairway/internal/retrieval"
	"github.com/fairwaylabs/fairway/internal/session"
	"github.com/fairwaylabs/fairway/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fairway server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fairway system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "fairway version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	apiToken, err := config.EnsureAPIToken(cfg)
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Cloud completion client answers the golfer; the local model, when
	// available, handles profile extraction and drill embeddings.
	cloud := llm.NewClient(cfg.OpenAI.APIKey, llm.ClientOptions{
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	ollamaClient := llm.NewOllama(cfg.Ollama.BaseURL, cfg.Ollama.FastModel, cfg.Ollama.EmbedModel)

	var extractClient llm.Chatter = cloud
	var drillRetriever coach.DrillRetriever
	var mcpRetriever api.MCPRetriever
	var vectors api.VectorDeleter
	var worker *ingest.Worker

	if err := llm.EnsureOllamaReady(ctx, ollamaClient, os.Stderr); err != nil {
		printWarning("local model unavailable, drill search disabled: %v", err)
	} else {
		extractClient = ollamaClient
		embedder := retrieval.NewEmbedder(ollamaClient)
		vectorStore := retrieval.NewSQLiteStore(store.DB())
		retriever := retrieval.NewRetriever(embedder, vectorStore)
		drillRetriever = retriever
		mcpRetriever = retriever
		vectors = vectorStore
		worker = ingest.NewWorker(store, embedder, vectorStore, 500*time.Millisecond)
	}

	// Build the coaching core.
	profiles := profile.NewManager(store)
	extractor := extract.NewExtractor(extractClient)
	insights := insight.NewGenerator(extractClient)
	comp := composer.New(0)
	coachSvc := coach.New(cloud, profiles, extractor, insights, comp, drillRetriever, store, coach.Options{
		HistoryWindow: cfg.Coach.HistoryWindow,
		ExtractEvery:  cfg.Coach.ExtractEvery,
		TopK:          cfg.Retrieval.TopK,
	})

	deps := api.AppDeps{
		Store:    store,
		Profiles: profiles,
		Coach:    coachSvc,
		Sessions: session.NewRegistry(),
		Vectors:  vectors,
		Token:    apiToken,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(deps),
	}

	// Start ingest worker.
	if worker != nil {
		go worker.Run(ctx)
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(deps, mcpRetriever)
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "fairway listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	serverUp := false
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			serverUp = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	// Check Ollama.
	ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
	if err != nil {
		printStatus("Ollama", "not running")
	} else {
		ollamaResp.Body.Close()
		printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
	}

	printStatus("Coach model", "%s", cfg.OpenAI.Model)
	printStatus("Fast model", "%s", cfg.Ollama.FastModel)
	printStatus("Embed model", "%s", cfg.Ollama.EmbedModel)

	// Show golfer/drill counts if the server is running.
	if serverUp {
		if c, err := newAPIClient(); err == nil {
			if resp, err := c.get(ctx, "/v1/golfers"); err == nil {
				var body struct {
					Golfers []string `json:"golfers"`
				}
				if decodeJSON(resp, &body) == nil {
					printStatus("Golfers", "%d", len(body.Golfers))
				}
			}
			if resp, err := c.get(ctx, "/v1/drills?limit=100"); err == nil {
				var drills []json.RawMessage
				if decodeJSON(resp, &drills) == nil {
					printStatus("Drills", "%s", countLabel(len(drills), 100))
				}
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func countLabel(count, limit int) string {
	if count >= limit {
		return fmt.Sprintf("%d+", count)
	}
	return fmt.Sprintf("%d", count)
}
