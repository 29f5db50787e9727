// Package main provides the battle service binary: the JSON API plus the
// gRPC health endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokebattle/internal/app"
	"github.com/cory-johannsen/pokebattle/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	a, cleanup, err := app.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()

	a.Logger.Info("pokebattle starting",
		zap.String("http_addr", cfg.HTTP.Addr()),
		zap.String("grpc_addr", cfg.GRPC.Addr()),
		zap.Duration("startup", time.Since(start)),
	)
	if err := a.Run(ctx); err != nil {
		a.Logger.Error("server stopped with error", zap.Error(err))
		cleanup()
		log.Fatalf("running: %v", err)
	}
}
