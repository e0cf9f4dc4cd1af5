// @title Aptitude Platform API
// @version 1.0
// @description Backend for aptitude practice questions and video lectures.

// @host localhost:5000
// @BasePath /api

package main

import (
	"aptitude_backend/internal/app"
	"aptitude_backend/internal/config"
	"aptitude_backend/pkg/logger"
	"flag"
	"log"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg, *configDir)
	defer logger.Log.Sync()

	application.Run()
}
