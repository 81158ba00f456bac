package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hughgramel/readfluent/internal/app"
	"github.com/hughgramel/readfluent/internal/config"
	"github.com/hughgramel/readfluent/internal/ratelimit"
	"github.com/hughgramel/readfluent/internal/server"
	"github.com/hughgramel/readfluent/internal/usertoken"
	"github.com/hughgramel/readfluent/internal/util"
	"github.com/hughgramel/readfluent/pkg/ai"
	"github.com/hughgramel/readfluent/pkg/storage"
	"github.com/hughgramel/readfluent/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)
	jwtLeeway, err := config.ParseJWTLeeway(cfg.JWTLeeway)
	if err != nil {
		log.Fatalf("failed to parse jwt leeway: %v", err)
	}
	tokenVerifier, err := usertoken.NewVerifier(usertoken.Config{
		JWKSURL:    cfg.AuthJWKSURL,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		Leeway:     jwtLeeway,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
	if err != nil {
		log.Fatalf("failed to init jwks verifier: %v", err)
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxy cidrs: %v", err)
	}

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init postgres store: %v", err)
	}
	objects, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}

	appCore, err := app.New(app.Config{
		Store: dataStore,
		Blobs: storage.NewBookBlobStore(objects),
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	var explainer server.WordExplainer
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("failed to init gemini client: %v", err)
		}
		explainer = gemini
	}
	var translator server.SentenceTranslator
	if cfg.TranslateAPIKey != "" {
		tr, err := ai.NewTranslateClient(cfg.TranslateAPIKey)
		if err != nil {
			log.Fatalf("failed to init translate client: %v", err)
		}
		translator = tr
	}
	var speechTokens server.SpeechTokenIssuer
	if cfg.SpeechSubscriptionKey != "" {
		st, err := ai.NewSpeechTokenClient(cfg.SpeechSubscriptionKey, cfg.SpeechRegion, redisClient)
		if err != nil {
			log.Fatalf("failed to init speech token client: %v", err)
		}
		speechTokens = st
	}

	var proxyLimiter *ratelimit.FixedWindowLimiter
	if cfg.ProxyRateLimitPerMinute > 0 {
		proxyLimiter, err = ratelimit.NewFixedWindowLimiter(
			redisClient, "readfluent:ratelimit:proxy",
			cfg.ProxyRateLimitPerMinute, time.Minute,
		)
		if err != nil {
			log.Fatalf("failed to init proxy limiter: %v", err)
		}
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		TokenVerifier:  tokenVerifier,
		Explainer:      explainer,
		Translator:     translator,
		SpeechTokens:   speechTokens,
		ProxyLimiter:   proxyLimiter,
		TrustedProxies: trustedProxies,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("readfluent server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
