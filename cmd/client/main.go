package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/chirp/internal/buildinfo"
	"github.com/dmitrijs2005/chirp/internal/client/cli"
	"github.com/dmitrijs2005/chirp/internal/client/config"
	"github.com/dmitrijs2005/chirp/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(cfg, os.Stdin, os.Stdout, logger, nil)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
