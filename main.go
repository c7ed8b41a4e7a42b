package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cofounder/middleware"
	"cofounder/pkg/config"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
	"cofounder/pkg/store"
	tokenstore "cofounder/pkg/token"
	"cofounder/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return err
	}

	revoked, closeRevoked, err := openRevocationStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRevoked()

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	profiles := store.NewProfileRepo(db)
	identity := services.NewIdentityService(store.NewUserRepo(db), revoked, cfg.JWTSecret, cfg.TokenTTL, log)
	completion := services.NewCompletionService(cfg.CompletionBaseURL, cfg.CompletionAPIKey, cfg.CompletionModel, cfg.CompletionTimeout, log)
	if cfg.CompletionAPIKey == "" {
		log.Warn("COMPLETION_API_KEY is not set, relay requests will fail upstream")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log), middleware.CORS(cfg.CORSAllowOrigins))
	routes.RegisterRoutes(r, routes.Deps{
		AnonKey:       cfg.AnonKey,
		Bucket:        cfg.StorageBucket,
		Identity:      identity,
		Relay:         services.NewRelay(profiles, completion, log),
		Uploads:       services.NewUploadService(blobs, log),
		Blobs:         blobs,
		Conversations: store.NewConversationRepo(db),
		Messages:      store.NewMessageRepo(db),
		Profiles:      profiles,
		Log:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening", "addr", srv.Addr, "env", cfg.AppEnv)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRevocationStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (tokenstore.RevocationStore, func(), error) {
	if cfg.RedisAddr == "" {
		mem := tokenstore.NewMemoryStore(cfg.RevokeCache)
		return mem, mem.Close, nil
	}
	rs, err := tokenstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Token revocations shared through redis", "addr", cfg.RedisAddr)
	return rs, func() { _ = rs.Close() }, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config) (services.BlobStore, error) {
	if cfg.StorageBackend == "gcs" {
		return services.NewGCSStore(ctx, cfg.StorageBucket, cfg.GCSCredentials)
	}
	return services.NewDiskStore(cfg.StorageDir, cfg.PublicBaseURL, cfg.StorageBucket)
}
