// Package main provides the trainer server binary: the capture and roster
// backend behind a gRPC service, plus the HTTP passkey ceremony endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cory-johannsen/poketrainer/internal/auth/passkey"
	"github.com/cory-johannsen/poketrainer/internal/config"
	"github.com/cory-johannsen/poketrainer/internal/game/capture"
	"github.com/cory-johannsen/poketrainer/internal/game/creature"
	"github.com/cory-johannsen/poketrainer/internal/game/dice"
	"github.com/cory-johannsen/poketrainer/internal/game/scan"
	"github.com/cory-johannsen/poketrainer/internal/game/session"
	"github.com/cory-johannsen/poketrainer/internal/observability"
	"github.com/cory-johannsen/poketrainer/internal/scripting"
	"github.com/cory-johannsen/poketrainer/internal/server"
	"github.com/cory-johannsen/poketrainer/internal/storage/postgres"
	"github.com/cory-johannsen/poketrainer/internal/trainerserver"
	trainerv1 "github.com/cory-johannsen/poketrainer/internal/trainerserver/trainerv1"
	"github.com/cory-johannsen/poketrainer/internal/web"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	seed := flag.Uint64("seed", 0, "deterministic capture rolls from this seed; 0 = crypto source")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, zap.String("server", cfg.Server.Name))
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting trainer server",
		zap.String("mode", cfg.Server.Mode),
		zap.String("grpc_addr", cfg.TrainerServer.Addr()),
		zap.String("web_addr", cfg.Web.Addr()),
	)

	// Load the species catalog
	catStart := time.Now()
	catalog, err := creature.LoadCatalog(cfg.Capture.CatalogDir)
	if err != nil {
		logger.Fatal("loading catalog", zap.String("dir", cfg.Capture.CatalogDir), zap.Error(err))
	}
	if _, ok := catalog.ByID(cfg.Roster.StarterID); !ok {
		logger.Fatal("starter species missing from catalog", zap.Int("starter_id", cfg.Roster.StarterID))
	}
	logger.Info("catalog loaded",
		zap.Int("species", catalog.Len()),
		zap.Duration("elapsed", time.Since(catStart)),
	)

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
		logger.Warn("capture rolls are deterministic", zap.Uint64("seed", *seed))
	}

	// Initialise scripting engine
	var modifier capture.ChanceModifier
	if cfg.Capture.ScriptDir != "" {
		scriptStart := time.Now()
		scriptMgr := scripting.NewManager(dice.NewLoggedRoller(src, logger), logger)
		defer scriptMgr.Close()
		if err := scriptMgr.LoadTree(cfg.Capture.ScriptDir, cfg.Capture.ScriptInstructionLimit); err != nil {
			logger.Fatal("loading capture scripts", zap.String("dir", cfg.Capture.ScriptDir), zap.Error(err))
		}
		modifier = scriptMgr
		logger.Info("scripting engine initialized",
			zap.Strings("scopes", scriptMgr.Scopes()),
			zap.Duration("elapsed", time.Since(scriptStart)),
		)
	}

	// Select persistence
	var (
		store       session.Store
		credentials passkey.CredentialStore
	)
	switch cfg.Server.Mode {
	case config.ModePersistent:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		total, idle := pool.Stats()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int32("conns", total),
			zap.Int32("idle", idle),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		store = postgres.NewStore(pool.DB())
		credentials = postgres.NewPasskeyRepository(pool.DB())
	default:
		store = session.NewMemoryStore()
		credentials = passkey.NewMemoryStore()
	}

	resolver := capture.NewResolver(src, logger, modifier)
	sessions := session.NewManager(scan.NewIntake(catalog, logger), resolver, session.Settings{
		BoxNames:    cfg.Roster.BoxNames,
		LandOnTeam:  cfg.Capture.Landing == config.LandingTeam,
		RelockAfter: cfg.Gate.RelockAfter,
		MaxAttempts: cfg.Passcode.MaxAttempts,
		Detector:    capture.NewCatalogDetector(catalog.Creatures(), src),
	}, logger)

	svc := trainerserver.NewTrainerService(sessions, catalog, store, trainerserver.Options{
		Authenticator: cfg.Gate.Authenticator,
		StarterID:     cfg.Roster.StarterID,
	}, logger)

	grpcServer := grpc.NewServer()
	trainerv1.RegisterTrainerServiceServer(grpcServer, svc)

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.TrainerServer.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.TrainerServer.Addr(), err)
			}
			logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			// A waiting camera scan holds GracefulStop open until its session closes.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			svc.Shutdown(shutdownCtx)
			grpcServer.GracefulStop()
		},
	})

	if cfg.Gate.Authenticator == config.AuthenticatorPasskey {
		passkeys, err := passkey.New(cfg.Passkey, credentials)
		if err != nil {
			logger.Fatal("configuring passkeys", zap.Error(err))
		}
		httpServer := &http.Server{
			Addr:              cfg.Web.Addr(),
			Handler:           web.NewRouter(web.NewHandler(passkeys, sessions, logger)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		lifecycle.Add("web", &server.FuncService{
			StartFn: func() error {
				logger.Info("passkey endpoints listening", zap.String("addr", httpServer.Addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpServer.Shutdown(shutdownCtx)
			},
		})
	}

	logger.Info("trainer server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Strings("services", lifecycle.Names()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
