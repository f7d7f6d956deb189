package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"mintforge/config"
	"mintforge/core/state"
	"mintforge/crypto"
	"mintforge/ledger"
	"mintforge/native/assets"
	"mintforge/native/auction"
	"mintforge/native/rewards"
	"mintforge/observability/logging"
	"mintforge/rpc"
	"mintforge/storage"
)

func main() {
	configPath := flag.String("config", "./config.toml", "path to the daemon configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "forged: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logWriter io.Writer = os.Stdout
	if cfg.LogPath != "" {
		logWriter = &lumberjack.Logger{
			Filename:   cfg.LogPath,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
		}
	}
	log := logging.Setup("forged", cfg.Environment, logWriter)

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	manager := state.NewManager(db)
	token := ledger.NewToken(manager)

	authority, err := requiredAddress(cfg.Authority, "Authority")
	if err != nil {
		return err
	}
	engineAddr, err := requiredAddress(cfg.EngineAddress, "EngineAddress")
	if err != nil {
		return err
	}
	maxSupply, err := cfg.MaxSupplyBig()
	if err != nil {
		return err
	}

	source := auction.NewSource(manager, authority)
	registry := assets.NewRegistry(manager)

	engine := rewards.NewEngine(authority)
	engine.SetLedger(token)
	engine.SetSharesSource(source)
	engine.SetOwnershipRegistry(registry)
	engine.SetHoldingState(manager)
	engine.SetIdentity(engineAddr)
	if err := engine.SetMaxSupply(authority, maxSupply); err != nil {
		return fmt.Errorf("set max supply: %w", err)
	}

	server := rpc.NewServer(engine, source, registry, log)
	httpServer := &http.Server{
		Addr:              cfg.RPCAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving JSON-RPC", "addr", cfg.RPCAddress, "backend", cfg.DataBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("rpc server: %w", err)
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.DataBackend {
	case config.BackendBolt:
		return storage.NewBoltDB(cfg.DataDir + "/forge.db")
	default:
		return storage.NewLevelDB(cfg.DataDir)
	}
}

func requiredAddress(value, field string) ([20]byte, error) {
	if value == "" {
		return [20]byte{}, fmt.Errorf("config field %s is required", field)
	}
	addr, err := crypto.DecodeAddress(value)
	if err != nil {
		return [20]byte{}, fmt.Errorf("config field %s: %w", field, err)
	}
	return addr.Array(), nil
}
