package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/prolianceltd/taskflow-cli/internal/client/cli"
	"github.com/prolianceltd/taskflow-cli/internal/client/config"
	"github.com/prolianceltd/taskflow-cli/internal/logging"
)

func main() {

	cfg := config.LoadConfig()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer zl.Sync()

	app, err := cli.NewApp(cfg, logging.NewZapLogger(zl))
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())

}
