package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coemu/server/internal/config"
	"github.com/coemu/server/internal/crypto"
	"github.com/coemu/server/internal/data"
	"github.com/coemu/server/internal/handler"
	"github.com/coemu/server/internal/logging"
	gamenet "github.com/coemu/server/internal/net"
	"github.com/coemu/server/internal/persist"
	"github.com/coemu/server/internal/scripting"
	"github.com/coemu/server/internal/token"
	"github.com/coemu/server/internal/world"
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

	log.Info("starting game server")

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

	w, err := loadWorld(ctx, db, cfg, log)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	scripts, err := scripting.NewEngine(filepath.Join(cfg.Game.DataLocation, "scripts"), log.Named("lua"))
	if err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}
	defer scripts.Close()

	deps := &handler.Game{
		Config:     cfg,
		World:      w,
		Tokens:     token.NewStore(),
		Characters: persist.NewCharacterRepo(db),
		Scripts:    scripts,
		Log:        log.Named("game"),
	}

	gameSrv, err := gamenet.NewServer(fmt.Sprintf("0.0.0.0:%d", cfg.Game.Port), gamenet.ServerConfig{
		NewCipher:    func() crypto.Cipher { return crypto.NewTQCipher() },
		Registry:     handler.NewGameRegistry(deps, log.Named("packets")),
		RenderError:  handler.RenderError,
		OnDisconnect: func(ctx context.Context, s *gamenet.Session) { deps.OnDisconnect(ctx, s) },
		OutQueueSize: cfg.Network.OutQueueSize,
		Log:          log.Named("net"),
	})
	if err != nil {
		return fmt.Errorf("listen game: %w", err)
	}

	rpcSrv, err := gamenet.NewServer(fmt.Sprintf("0.0.0.0:%d", cfg.Game.RPCPort), gamenet.ServerConfig{
		NewCipher:    func() crypto.Cipher { return crypto.NopCipher{} },
		Registry:     handler.NewRPCRegistry(deps, log.Named("rpc")),
		RenderError:  handler.RenderError,
		OutQueueSize: 64,
		Log:          log.Named("rpc"),
	})
	if err != nil {
		return fmt.Errorf("listen rpc: %w", err)
	}

	log.Info("game server listening",
		zap.Int("port", cfg.Game.Port),
		zap.Int("rpc_port", cfg.Game.RPCPort),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return gameSrv.Serve(gctx) })
	g.Go(func() error { return rpcSrv.Serve(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		gameSrv.Shutdown()
		rpcSrv.Shutdown()
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("game server stopped")
	return nil
}

// loadWorld builds the map registry from the database; floors load lazily
// from the data location as characters first enter them.
func loadWorld(ctx context.Context, db *persist.DB, cfg *config.Config, log *zap.Logger) (*world.World, error) {
	repo := persist.NewWorldRepo(db)
	maps, err := repo.Maps(ctx)
	if err != nil {
		return nil, err
	}

	w := world.NewWorld(log.Named("world"))
	loader := data.FloorLoaderAt(cfg.Game.DataLocation)
	for _, row := range maps {
		portalRows, err := repo.PortalsByMap(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		portals := make([]world.PortalData, 0, len(portalRows))
		for _, p := range portalRows {
			portals = append(portals, world.PortalData{
				ID: p.ID, FromMapID: p.FromMapID, FromX: p.FromX, FromY: p.FromY,
				ToMapID: p.ToMapID, ToX: p.ToX, ToY: p.ToY,
			})
		}

		npcRows, err := repo.NpcsByMap(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		npcs := make([]world.NpcData, 0, len(npcRows))
		for _, n := range npcRows {
			npcs = append(npcs, world.NpcData{
				ID: n.ID, Name: n.Name, Kind: n.Kind, Look: n.Look,
				MapID: n.MapID, X: n.X, Y: n.Y, Base: n.Base, Sort: n.Sort,
			})
		}

		w.AddMap(world.NewMap(world.MapData{
			ID:        row.ID,
			Path:      row.Path,
			ReviveX:   row.RevivePointX,
			ReviveY:   row.RevivePointY,
			Flags:     row.Flags,
			Weather:   row.Weather,
			RebornMap: row.RebornMap,
			Color:     row.Color,
		}, portals, npcs, loader))
	}
	log.Info("world loaded", zap.Int("maps", len(maps)))
	return w, nil
}
