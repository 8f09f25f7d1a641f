// Command resumecli is an interactive client for the resume analysis API.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/resumecli/internal/buildinfo"
	"github.com/dmitrijs2005/resumecli/internal/client/cli"
	"github.com/dmitrijs2005/resumecli/internal/client/config"
	"github.com/dmitrijs2005/resumecli/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// stdout belongs to the REPL.
	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx := context.Background()
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
