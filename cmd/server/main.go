// Command resumecli-devserver serves the resume analysis API locally.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/resumecli/internal/buildinfo"
	"github.com/dmitrijs2005/resumecli/internal/logging"
	"github.com/dmitrijs2005/resumecli/internal/server"
	"github.com/dmitrijs2005/resumecli/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(os.Stdout, "json", cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
