package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/crisphq/crisp-interview/config"
	"github.com/crisphq/crisp-interview/internal/api/handlers"
	"github.com/crisphq/crisp-interview/internal/api/middleware"
	"github.com/crisphq/crisp-interview/internal/api/routes"
	"github.com/crisphq/crisp-interview/internal/extractor"
	"github.com/crisphq/crisp-interview/internal/gateway"
	"github.com/crisphq/crisp-interview/internal/interview"
	"github.com/crisphq/crisp-interview/internal/logger"
	"github.com/crisphq/crisp-interview/internal/providers/llm"
	mongorepo "github.com/crisphq/crisp-interview/internal/repositories/mongo"
	pgrepo "github.com/crisphq/crisp-interview/internal/repositories/postgres"
	"github.com/crisphq/crisp-interview/internal/services"
	"github.com/crisphq/crisp-interview/internal/settings"
	"github.com/crisphq/crisp-interview/internal/storage"
	"github.com/crisphq/crisp-interview/internal/store"
)

func main() {
	_ = godotenv.Load()
	l := logger.New()
	ctx := context.Background()

	cfg, err := settings.Load(os.Getenv("INTERVIEW_SETTINGS"))
	if err != nil {
		log.Fatalf("settings error: %v", err)
	}

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}

	// LLM provider (Vertex AI Gemini)
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatal("GOOGLE_CLOUD_PROJECT environment variable is not set")
	}
	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	if location == "" {
		location = "us-central1"
	}
	provider, err := llm.NewVertexGemini(ctx, projectID, location, cfg.Model.Name, cfg.Model.Temperature)
	if err != nil {
		log.Fatalf("Vertex AI init error: %v", err)
	}
	defer provider.Close()

	// Resume archival is optional
	var uploader storage.Uploader
	if bucket := os.Getenv("RESUME_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, bucket)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcs.Close()
		uploader = gcs
	}

	var snapshots store.Store
	if config.RedisClient != nil {
		snapshots = store.NewRedisStore(config.RedisClient)
		l.Info("Redis connected; session snapshots are durable")
	} else {
		snapshots = store.NewMemoryStore()
		l.Warn("no Redis configured; session snapshots will not survive a restart")
	}

	var transcripts mongorepo.TranscriptRepository
	if config.MongoClient != nil {
		dbName := os.Getenv("MONGO_DB")
		if dbName == "" {
			dbName = "crisp"
		}
		transcripts = mongorepo.NewTranscriptRepo(config.MongoClient.Database(dbName))
		l.Info("MongoDB connected; transcripts will be archived")
	}

	registry := services.NewRegistryService(pgrepo.NewCandidateRepo(config.PostgresDB), l)
	resumes := services.NewResumeService(extractor.New(l), uploader, l)
	gw := gateway.New(provider, cfg, l)

	engine := interview.NewEngine(interview.Config{
		Gateway:      gw,
		Resumes:      resumes,
		Registry:     registry,
		Transcripts:  transcripts,
		Store:        snapshots,
		Logger:       l,
		TickInterval: time.Second,
	})
	defer engine.Close()

	if err := engine.Restore(ctx); err != nil {
		l.WithError(err).Warn("failed to restore session snapshot; starting fresh")
	}
	if engine.NeedsWelcomeBack() {
		l.Info("restored an in-progress interview; waiting for continue-or-end")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Interview: handlers.NewInterviewHandler(engine),
		Candidate: handlers.NewCandidateHandler(registry),
		Auth:      handlers.NewAuthHandler(),
		WS:        handlers.NewWSHandler(engine, l),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
