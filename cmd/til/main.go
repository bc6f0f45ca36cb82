package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/til/internal/buildinfo"
	"github.com/dmitrijs2005/til/internal/client/cli"
	"github.com/dmitrijs2005/til/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
