// Command server runs the WanderVenture booking API.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wanderventure/wanderventure-server/config"
	"github.com/wanderventure/wanderventure-server/logging"
	"github.com/wanderventure/wanderventure-server/server"
	"github.com/wanderventure/wanderventure-server/store"
	"github.com/wanderventure/wanderventure-server/store/mongostore"
	"github.com/wanderventure/wanderventure-server/store/sqlitestore"
)

func main() {
	seedRooms := flag.String("seed-rooms", "", "JSON file with an array of rooms to load into the sqlite store before serving")
	flag.Parse()

	if err := run(*seedRooms); err != nil {
		fmt.Fprintf(os.Stderr, "wanderventure-server: %v\n", err)
		os.Exit(1)
	}
}

func run(seedRooms string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	}()

	if seedRooms != "" {
		n, err := seed(ctx, st, seedRooms)
		if err != nil {
			logger.Error("seed rooms", zap.String("file", seedRooms), zap.Error(err))
			return err
		}
		logger.Info("seeded rooms", zap.Int("count", n))
	}

	if err := server.Run(ctx, server.Params{Config: cfg, Store: st, Logger: logger}); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return sqlitestore.Open(cfg.SQLitePath)
	default:
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}
}

// roomSeeder is implemented by stores that accept catalogue writes
type roomSeeder interface {
	InsertRoom(ctx context.Context, doc store.Document) (store.InsertResult, error)
}

func seed(ctx context.Context, st store.Store, path string) (int, error) {
	seeder, ok := st.(roomSeeder)
	if !ok {
		return 0, fmt.Errorf("store does not support seeding; use STORE_DRIVER=sqlite")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var rooms []store.Document
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}
	for i, room := range rooms {
		if _, err := seeder.InsertRoom(ctx, room); err != nil {
			return i, err
		}
	}
	return len(rooms), nil
}
