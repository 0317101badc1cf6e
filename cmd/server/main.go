package main

import (
	"context"
	"log"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/kinjaldesarla/PostIt/internal/router"
	"github.com/kinjaldesarla/PostIt/pkg/config"
	"github.com/kinjaldesarla/PostIt/pkg/firebase"
	"github.com/kinjaldesarla/PostIt/pkg/storage"
	"github.com/kinjaldesarla/PostIt/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Firebase login is optional; enabled when credentials are configured
	var firebaseAuthClient *fbauth.Client
	if cfg.FirebaseCredentialsPath != "" {
		ctx := context.Background()
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuthClient = firebaseApp.AuthClient
	}

	// Image blob storage
	uploader, err := storage.NewS3Uploader(cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		log.Fatalf("Failed to initialize S3 uploader: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Mongo, db.Postgres, firebaseAuthClient, uploader)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
