//	@title			Gallery API
//	@version		1.0
//	@description	Photo gallery backend: uploads, generated captions and signed download links.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/gallery/service/internal/config"
	"github.com/gallery/service/internal/describe"
	"github.com/gallery/service/internal/gallery"
	"github.com/gallery/service/internal/logging"
	appMiddleware "github.com/gallery/service/internal/middleware"
	"github.com/gallery/service/internal/signedurl"

	_ "github.com/gallery/service/docs/swagger"
)

func main() {
	logging.Setup("info", true)
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config failed")
	}
	logging.Setup(cfg.LogLevel, !cfg.IsProduction())

	ctx := context.Background()

	docs, closeDocs, err := openDocStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DocStoreDriver).Msg("document store init failed")
	}
	defer closeDocs()

	blobs, closeBlobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("object storage init failed")
	}
	defer closeBlobs()

	var describer describe.Describer = describe.Disabled{}
	if cfg.OpenAIKey != "" {
		describer = describe.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, uploads use placeholder titles")
	}

	// Wire dependencies: stores → signed-url cache → service → handler
	urls := signedurl.New(blobs, signedurl.NewRepository(docs), signedurl.WithDefaultTTL(cfg.SignedURLTTL))
	gallerySvc := gallery.NewService(blobs, docs, urls, describer, cfg.SignedURLTTL)
	galleryHandler := gallery.NewHandler(gallerySvc, cfg.MaxUploadBytes)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
		galleryHandler.Routes(r)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
