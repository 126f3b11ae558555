package main

import (
	"context"
	"log"

	"github.com/yaroslaavl/recruiter-cv-service/internal/bootstrap"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/config"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.CVService.RunSweeper(ctx, cfg.SweepInterval, cfg.SweepGrace)

	addr := server.Addr(cfg.Port)
	log.Printf("Starting CV service on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
