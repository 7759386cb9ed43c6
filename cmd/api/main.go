// server/cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"fleet-coordinator-api-server/config"
	"fleet-coordinator-api-server/internal/api/routes"
	"fleet-coordinator-api-server/internal/database"
	"fleet-coordinator-api-server/internal/incidents"
	"fleet-coordinator-api-server/internal/mail"
	"fleet-coordinator-api-server/internal/media"
	"fleet-coordinator-api-server/internal/session"
	"fleet-coordinator-api-server/internal/socket"
	"fleet-coordinator-api-server/internal/store"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// 1. Load .env (optional) and configuration
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be configured")
	}

	// 2. Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.Mongo.DBName)

	// 3. Seed the administrator account
	if err := database.SeedAdmin(&store.UserStore{DB: db}); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// 4. Media store for incident images; optional when no bucket is set
	var mediaStore incidents.MediaStore
	if cfg.S3.Bucket != "" {
		uploader, err := media.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to create S3 uploader: %v", err)
		}
		mediaStore = uploader
	} else {
		log.Println("S3 bucket not configured; incident images disabled")
	}

	// 5. Session guard and websocket hub
	guard := session.NewGuard()
	hub := socket.NewHub()

	// 6. Router
	router := routes.SetupRouter(cfg, db, guard, mediaStore, mail.LogSender{}, hub)

	// 7. Start server
	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
