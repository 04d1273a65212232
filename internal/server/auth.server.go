package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"auth-service/internal/config"
	"auth-service/internal/handler"
	"auth-service/internal/repository"
	"auth-service/internal/router"
	oauth2svc "auth-service/internal/service/oauth2"
	"auth-service/internal/usecase"
	"auth-service/pkg/cache"
	"auth-service/pkg/jwtutil"
	kafkaproducer "auth-service/pkg/kafka"
	"auth-service/pkg/middleware"
)

const tokenIssuer = "auth-service"

// NewServer wires every component from configuration. Construction is fatal
// on anything that would otherwise fail at request time: bad secrets, an
// unreachable credential store, broken indexes.
func NewServer(cfg config.AppConfig) *http.Server {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("failed to ping mongo: %v", err)
	}

	repo := repository.NewAccountRepository(client.Database(cfg.MongoDB))
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("failed to ensure account indexes: %v", err)
	}

	var store cache.Store
	if cfg.RedisAddr != "" {
		store = cache.NewRedis([]string{cfg.RedisAddr}, cfg.RedisPass, false)
	} else {
		log.Printf("REDIS_ADDR not set, using in-process cache store")
		store = cache.NewMemory()
	}

	signer, err := jwtutil.NewSigner(cfg.JWTSecret, tokenIssuer, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to init token signer: %v", err)
	}
	verifier, err := jwtutil.NewVerifier(cfg.JWTSecret, tokenIssuer)
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	var producer usecase.AuthEventProducer
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafkaproducer.NewAuthEventProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("failed to create auth event producer: %v", err)
		}
		producer = p
	}

	uc := usecase.NewAccountUsecase(repo, producer)

	auth := middleware.NewAuthMiddleware(verifier)
	csrf := middleware.NewCSRFGuard(cfg.CookieSecret, cfg.Production())

	authHandler := handler.NewAuthHandler(uc, signer, csrf, cfg)

	var oauthHandler *handler.OAuth2Handler
	if cfg.OAuthEnabled() {
		googleSvc := oauth2svc.NewGoogleService(cfg.Google, store)
		oauthHandler = handler.NewOAuth2Handler(googleSvc, uc, signer, authHandler, cfg)
	}

	r := chi.NewRouter()
	router.SetupRoutes(r, authHandler, oauthHandler, auth, csrf, store, cfg)

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
