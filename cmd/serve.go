package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvran/adventure-gm/internal/adventure"
	"github.com/corvran/adventure-gm/internal/agentclient"
	"github.com/corvran/adventure-gm/internal/config"
	"github.com/corvran/adventure-gm/internal/gateway"
	"github.com/corvran/adventure-gm/internal/httpapi"
	"github.com/corvran/adventure-gm/internal/imagesvc"
	"github.com/corvran/adventure-gm/internal/index"
	"github.com/corvran/adventure-gm/internal/tracing"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the session engine server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	shutdownTracing, err := tracing.Init(context.Background(), tracing.Config{
		ServiceName: "adventure-gm",
	})
	if err != nil {
		slog.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	idx, err := index.Open(cfg.DatabaseURL, cfg.AdventuresDir+"/index.db")
	if err != nil {
		slog.Error("failed to open adventure index", "error", err)
		os.Exit(1)
	}
	defer idx.Close()

	store := adventure.NewStore(cfg.AdventuresDir, idx)

	var client agentclient.Client
	if cfg.MockSDK {
		client = agentclient.NewMockClient()
		slog.Info("running with MOCK_SDK simulator")
	} else {
		client = agentclient.NewSubprocessClient(cfg.AgentCommand, cfg.AgentArgs...)
	}

	imgSvc := imagesvc.NewCachingService(imagesvc.NoOpService{}, cfg.StaticRoot+"/backgrounds")
	hub := gateway.NewHub(cfg, store, client, imgSvc)
	api := httpapi.New(store, idx, hub, cfg.StaticRoot)

	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Handler: mux,
	}

	stopHeartbeat := hub.StartHeartbeat()

	go func() {
		slog.Info("adventure-gm listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown(ctx, stopHeartbeat)
	srv.Shutdown(ctx)
}
