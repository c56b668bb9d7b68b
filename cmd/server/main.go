package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/tycoon/pkg/api"
	"github.com/cbodonnell/tycoon/pkg/api/handlers"
	authproviders "github.com/cbodonnell/tycoon/pkg/auth/providers"
	"github.com/cbodonnell/tycoon/pkg/config"
	"github.com/cbodonnell/tycoon/pkg/game"
	"github.com/cbodonnell/tycoon/pkg/log"
	"github.com/cbodonnell/tycoon/pkg/network"
	"github.com/cbodonnell/tycoon/pkg/repositories"
	"github.com/cbodonnell/tycoon/pkg/version"
	"github.com/cbodonnell/tycoon/pkg/workers"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	port := flag.Int("port", cfg.Port, "Port to listen on")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, parsedLogLevel)
	log.SetDefaultLogger(logger)
	defer logger.Sync()
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *port); err != nil {
		log.Error("Server exited: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, port int) error {
	authProvider, err := authproviders.New(ctx, cfg.AuthProvider, cfg.FirebaseProjectID, cfg.FirebaseAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create auth provider: %v", err)
	}

	repository, err := repositories.Open(ctx, cfg.DatabaseURL, cfg.MigrationsDir)
	if err != nil {
		return err
	}
	defer repository.Close(context.Background())

	boardLayout, err := game.ParseBoardLayout(cfg.BoardLayout)
	if err != nil {
		return err
	}

	registryOpts := game.NewRegistryOptions{
		BoardLayout:     boardLayout,
		StartingBalance: cfg.StartingBalance,
	}
	var lobbyRecorder handlers.LobbyRecorder
	if directory, ok := repository.(repositories.LobbyDirectory); ok {
		registryOpts.Lobbies = directory
		lobbyRecorder = directory
	}
	registry := game.NewRegistry(registryOpts)

	saveWorker := workers.NewSaveGameStateWorker(workers.NewSaveGameStateWorkerOptions{
		Repository: repository,
		Source:     registry,
		Interval:   cfg.SaveInterval,
	})

	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		AuthProvider:  authProvider,
		ClientManager: network.NewClientManager(),
		DefaultRoomID: cfg.DefaultRoomID,
	})

	gameManager := game.NewGameManager(game.NewGameManagerOptions{
		Registry:          registry,
		NetworkManager:    networkManager,
		SnapshotRequester: saveWorker,
		SnapshotLoader:    repository,
		BotTurnInterval:   cfg.BotTurnInterval,
	})
	gameManager.LoadState(ctx)

	var tlsConfig *api.TLSConfig
	if cfg.TLSCertFile != "" {
		tlsConfig = &api.TLSConfig{
			CertFile: cfg.TLSCertFile,
			KeyFile:  cfg.TLSKeyFile,
		}
	}
	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:             port,
		TLS:              tlsConfig,
		AuthProvider:     authProvider,
		Lobbies:          gameManager,
		LobbyRecorder:    lobbyRecorder,
		WebSocketHandler: networkManager.WebSocketHandler(ctx, gameManager.HandleMessage),
		LobbyRateLimit:   cfg.LobbyRateLimit,
		LobbyRateWindow:  cfg.LobbyRateWindow,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(apiServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return apiServer.Stop(shutdownCtx)
	})
	g.Go(func() error {
		log.Info("Starting bot turn scheduler")
		return gameManager.Start(gctx)
	})
	g.Go(func() error {
		saveWorker.Start(gctx)
		return nil
	})

	return g.Wait()
}
