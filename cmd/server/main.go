package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/arjun/music-app-backend/internal/auth"
	"github.com/arjun/music-app-backend/internal/config"
	"github.com/arjun/music-app-backend/internal/middleware"
	"github.com/arjun/music-app-backend/internal/store"
	"github.com/arjun/music-app-backend/internal/users"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	userStore := store.NewUserStore(mongoClient.Database(cfg.MongoDB))
	if err := userStore.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("mongo indexes: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	listCache := store.NewUserListCache(rdb)

	// ── MinIO ────────────────────────────────────────────────
	avatarStore, err := store.NewAvatarStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		logger.Fatalf("minio connect: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenService(cfg.JWTSecret)
	authHandler := auth.NewHandler(userStore, tokens, listCache, logger)
	userHandler := users.NewHandler(userStore, listCache, avatarStore, tokens, logger)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Account routes (public)
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// Authenticated update routes; these verify the token carried in the
	// request body, matching the mobile-client wire format.
	r.Post("/update-profile", userHandler.UpdateProfile)
	r.Post("/update-songs", userHandler.UpdateSongs)
	r.Post("/update-artists", userHandler.UpdateArtists)
	r.Post("/update-recently-played", userHandler.UpdateRecentlyPlayed)
	r.Post("/update-playlists", userHandler.UpdatePlaylists)
	r.Post("/get-users", userHandler.GetUsers)
	r.Post("/delete-user", userHandler.DeleteUser)
	r.Post("/edit-user", userHandler.EditUser)

	// Avatar routes (bearer header)
	r.Route("/avatars", func(r chi.Router) {
		r.With(middleware.RequireAuth(tokens)).Post("/", userHandler.UploadAvatar)
		r.Get("/{key}", userHandler.GetAvatar)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		logger.Infof("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
