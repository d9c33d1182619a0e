package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/fishcatch/internal/api"
	"github.com/ignite/fishcatch/internal/buyer"
	"github.com/ignite/fishcatch/internal/config"
	"github.com/ignite/fishcatch/internal/contactlog"
	"github.com/ignite/fishcatch/internal/draft"
	"github.com/ignite/fishcatch/internal/generator"
	"github.com/ignite/fishcatch/internal/guardrail"
	"github.com/ignite/fishcatch/internal/pkg/httpretry"
	"github.com/ignite/fishcatch/internal/price"
	"github.com/ignite/fishcatch/internal/repository/postgres"
	"github.com/ignite/fishcatch/internal/sendgate"
	"github.com/ignite/fishcatch/internal/transport"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.Open(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	catchRepo := postgres.NewCatchRepo(db)
	buyerRepo := postgres.NewBuyerRepo(db)
	draftRepo := postgres.NewDraftRepo(db)
	quoteRepo := postgres.NewPriceQuoteRepo(db)

	// Contact log: Redis when configured, in-memory otherwise.
	var contacts contactlog.Log
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		contacts = contactlog.NewRedisLog(redisClient)
		log.Printf("Contact log backed by redis at %s", cfg.Redis.Addr)
	} else {
		contacts = contactlog.NewMemoryLog()
		log.Println("Contact log is in-memory (single instance only)")
	}

	// Price resolution
	httpClient := httpretry.NewRetryClient(&http.Client{Timeout: 10 * time.Second}, 2)
	source := price.NewHTMLSource(cfg.Cannery.Name, cfg.Cannery.URL, httpClient)
	resolver := price.NewResolver(source, time.Duration(cfg.Cannery.TimeoutSeconds)*time.Second)

	// Draft generation
	gen, err := buildGenerator(ctx, cfg.Generator)
	if err != nil {
		log.Fatalf("Failed to build generator: %v", err)
	}

	validator := guardrail.New(contacts)
	matcher := buyer.NewMatcher(buyerRepo)
	draftSvc := draft.NewService(catchRepo, buyerRepo, matcher, resolver, gen, validator, draftRepo, cfg.Drafts.Concurrency)

	// Delivery
	gateway, err := transport.NewSESGateway(ctx, cfg.Transport.Region,
		cfg.Transport.AccessKey, cfg.Transport.SecretKey, cfg.Transport.FromEmail)
	if err != nil {
		log.Fatalf("Failed to create SES gateway: %v", err)
	}
	gate := sendgate.NewService(draftRepo, buyerRepo, contacts, gateway)

	handlers := api.NewHandlers(resolver, quoteRepo, catchRepo, buyerRepo, draftSvc, draftRepo, gate)
	server := api.NewServer(cfg.Server.Addr(), handlers, cfg.Server.CORSOrigins)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

// buildGenerator assembles the configured backend with the deterministic
// template as fallback so an AI outage degrades instead of failing.
func buildGenerator(ctx context.Context, cfg config.GeneratorConfig) (generator.Generator, error) {
	tmpl, err := generator.NewTemplateGenerator(cfg.Template)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "anthropic":
		primary := generator.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		return generator.WithFallback(primary, tmpl), nil
	case "bedrock":
		primary, err := generator.NewBedrockGenerator(ctx, cfg.BedrockRegion, cfg.BedrockModelID,
			cfg.AWSAccessKey, cfg.AWSSecretKey)
		if err != nil {
			return nil, err
		}
		return generator.WithFallback(primary, tmpl), nil
	default:
		return tmpl, nil
	}
}
