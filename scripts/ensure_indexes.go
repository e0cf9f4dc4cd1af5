// Creates the collection indexes by hand.
//
// The server already does this on its first connection. Run this after
// restoring a dump or before switching traffic to a fresh cluster.
//
// Usage: go run scripts/ensure_indexes.go

package main

import (
	"aptitude_backend/internal/config"
	"aptitude_backend/internal/repository"
	"aptitude_backend/pkg/database"
	"aptitude_backend/pkg/logger"
	"context"
	"log"
	"time"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongo := database.NewMongoManager(cfg.Mongo)
	defer mongo.Close(context.Background())

	db, err := mongo.Database(ctx)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}
	log.Printf("indexes ready on %s", cfg.Mongo.Database)
}
