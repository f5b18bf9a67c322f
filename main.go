package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wfunc/ludoserver/config"
	"github.com/wfunc/ludoserver/logger"
	"github.com/wfunc/ludoserver/monitor"
	"github.com/wfunc/ludoserver/persistence"
	"github.com/wfunc/ludoserver/server"
	"github.com/wfunc/ludoserver/services"
)

func main() {
	configDir := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		// logger 还没初始化
		logger.Init(true)
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.Log.Development)
	defer logger.Sync()

	// Initialize Database
	var db persistence.Database
	if cfg.Database.Enabled {
		db, err = persistence.Open(cfg.Database)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Log.Infow("Database connection successful.", "driver", cfg.Database.Driver)
	} else {
		logger.Log.Info("Game archive disabled.")
	}

	mon := monitor.NewMonitor("ludo")
	metricsServer := mon.StartServer(cfg.Server.MetricsAddress)
	logger.Log.Infof("Metrics listening on %s", cfg.Server.MetricsAddress)

	// Initialize Game Server
	gameServer, err := server.NewGameServer(server.Options{
		Addr:         cfg.Server.HTTPAddress,
		RPCAddr:      cfg.Server.RPCAddress,
		PublicOrigin: cfg.Server.PublicOrigin,
		Records:      services.NewRecordService(db),
		Monitor:      mon,
	})
	if err != nil {
		logger.Log.Fatalf("Failed to create server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- gameServer.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("Server stopped: %v", err)
		}
	case s := <-sig:
		logger.Log.Infof("Received %s, shutting down", s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Shutdown: %v", err)
	}
	metricsServer.Shutdown(ctx)
}
