package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coemu/server/internal/config"
	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/handler"
	"github.com/coemu/server/internal/logging"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/persist"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/server.toml"
	if p := os.Getenv("COEMU_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting account server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := persist.NewDB(dbCtx, cfg.Database, log)
	cancel()
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	log.Info("database ready")

	deps := &handler.Auth{
		Config:   cfg,
		Accounts: persist.NewAccountRepo(db),
		Realms:   persist.NewRealmRepo(db),
		Log:      log.Named("auth"),
	}

	srv, err := gamenet.NewServer(fmt.Sprintf("0.0.0.0:%d", cfg.Auth.Port), gamenet.ServerConfig{
		NewCipher:    func() crypto.Cipher { return crypto.NewTQCipher() },
		Registry:     handler.NewAuthRegistry(deps, log.Named("packets")),
		RenderError:  handler.RenderError,
		OutQueueSize: cfg.Network.OutQueueSize,
		Log:          log.Named("net"),
	})
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.Info("account server listening", zap.Int("port", cfg.Auth.Port))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		srv.Shutdown()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("account server stopped")
	return nil
}
