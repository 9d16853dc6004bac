package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "atelier"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort        = "8080"
	DefaultLogLevel    = "info"
	DefaultEnvironment = EnvDevelopment

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultCodeTTL     = 10 * time.Minute
	DefaultSessionTTL  = 2 * time.Hour
	DefaultSlotLockTTL = 10 * time.Second

	DefaultMailerDriver  = MailerDev
	DefaultMailFromName  = "Atelier Studio"
	DefaultMailFromEmail = "hello@atelier.studio"
	DefaultSMTPPort      = 587

	DefaultKafkaEventsTopic = "atelier.events"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	MailerDev        = "dev"
	MailerSMTP       = "smtp"
	MailerMailerSend = "mailersend"
)
