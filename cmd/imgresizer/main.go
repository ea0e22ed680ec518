// Package main provides launch of the imgresizer command-line tool
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/ImageResizer/internal/cli"
	"github.com/UnendingLoop/ImageResizer/internal/config"
	"github.com/UnendingLoop/ImageResizer/internal/service"
	"github.com/UnendingLoop/ImageResizer/internal/storage"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// считать энвы (и .env если он есть)
	cfg, err := config.Load("./.env")
	if err != nil {
		log.Fatalf("Failed to load config: %v\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// Ctrl+C останавливает batch между файлами
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strg, err := storage.NewImgStorage(ctx, cfg.Storage, 2*time.Second)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to init output storage")
	}

	svc, err := service.NewImageService(strg, cfg.Encoding)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("Failed to init image service")
	}

	root := cli.NewRootCmd(svc, cli.Defaults{Workers: cfg.Workers})
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		stop()
		os.Exit(1)
	}
}
