package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Albadylic/couch-potato/internal/agent"
	"github.com/Albadylic/couch-potato/internal/api"
	"github.com/Albadylic/couch-potato/internal/config"
	"github.com/Albadylic/couch-potato/internal/repository/mongo"
	"github.com/Albadylic/couch-potato/internal/service"
	"github.com/Albadylic/couch-potato/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Couch Potato Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureSavedPlanIndexes(ctx, appDB.Collection("saved_plans"))
		mongo.EnsureCoachMessageIndexes(ctx, appDB.Collection("coach_messages"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Snapshot Storage (optional) ---
	var snapshots storage.SnapshotStorage
	if cfg.S3.Enabled {
		log.Println("Initializing snapshot storage...")
		snapshots, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	} else {
		log.Println("Snapshot storage disabled; plan backups will be unavailable.")
	}

	// --- Initialize Agents ---
	log.Println("Initializing agents...")
	openAIClient, err := agent.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize OpenAI client: %v", err)
	}
	coachAgent := agent.NewCoachAgent(openAIClient)
	goalAgent := agent.NewGoalAgent(openAIClient)
	generator := agent.NewPlanGenerator(openAIClient)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	planRepo := mongo.NewMongoPlanRepository(appDB)
	messageRepo := mongo.NewMongoCoachMessageRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	planService := service.NewPlanService(planRepo, messageRepo, snapshots)
	coachService := service.NewCoachService(planService, messageRepo, coachAgent)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, planService, coachService, generator, goalAgent)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
