package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jayesh-zip/blog-app/internal/config"
	"github.com/jayesh-zip/blog-app/internal/database"
	"github.com/jayesh-zip/blog-app/internal/engine"
	"github.com/jayesh-zip/blog-app/internal/handlers"
	"github.com/jayesh-zip/blog-app/internal/middleware"
	"github.com/jayesh-zip/blog-app/internal/storage"
	"github.com/jayesh-zip/blog-app/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
)

func main() {
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	middleware.SetSecret(cfg.JWTSecret)

	metrics := utils.NewMetricsCollector()

	mongodb, err := database.NewMongoDB(cfg.MongoURI, cfg.DatabaseName)
	if err != nil {
		slog.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongodb.Close(ctx); err != nil {
			slog.Warn("failed to disconnect from MongoDB", "error", err)
		}
	}()

	blobs, err := storage.NewCloudinaryStore(cfg.CloudinaryURL, "blog-app")
	if err != nil {
		slog.Error("failed to initialize blob store", "error", err)
		os.Exit(1)
	}

	// Actor system: one actor per lifecycle manager
	system := actor.NewActorSystem()
	blogEngine := engine.NewEngine(system, metrics, mongodb, mongodb, blobs)

	server := handlers.NewServer(system, blogEngine, metrics)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	if cfg.Server.MetricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(mux)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, handler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
