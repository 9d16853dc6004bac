package main

import (
	"net/http"
	"strings"

	"atelier/internal/auth/handler"
	"atelier/internal/auth/mailer"
	"atelier/internal/auth/repository"
	"atelier/internal/auth/service"
	"atelier/internal/auth/validator"
	"atelier/pkg/app"
	"atelier/pkg/config"
	"atelier/pkg/events"
	"atelier/pkg/middleware"
)

const ServiceName = "auth"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Auth service")
	cfg.SetMongo()

	authService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.UseRateLimitKey(forwardedForKey)
	serverApp.SetApp(handler.NewAuthHandler(authService, cfg))
	serverApp.Run()
}

// forwardedForKey buckets rate-limit counters by the originating client when
// the service sits behind a proxy, falling back to the socket address.
func forwardedForKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.Index(xff, ","); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	return middleware.ClientIPExtractor(r)
}

func initServices(cfg *config.Config) service.AuthService {
	authValidator := validator.NewAuthValidator(cfg.Log)
	codeRepo := repository.NewMongoCodeRepository(cfg)
	sessionRepo := repository.NewMongoSessionRepository(cfg)
	mail := mailer.New(cfg)
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic, ServiceName, cfg.Log)

	authService := service.NewAuthService(
		codeRepo,
		sessionRepo,
		authValidator,
		mail,
		publisher,
		cfg,
	)

	cfg.Log.Info("Auth service initialized",
		"database", cfg.MongoDatabaseName,
		"mailer_driver", cfg.MailerDriver,
	)
	return authService
}
