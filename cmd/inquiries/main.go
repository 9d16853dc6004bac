package main

import (
	"atelier/internal/inquiries/handler"
	"atelier/internal/inquiries/repository"
	"atelier/internal/inquiries/service"
	"atelier/internal/inquiries/validator"
	"atelier/pkg/app"
	"atelier/pkg/config"
	"atelier/pkg/events"
)

const ServiceName = "inquiries"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Inquiries service")
	cfg.SetMongo()

	inquiryService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewInquiryHandler(inquiryService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.InquiryService {
	inquiryValidator := validator.NewInquiryValidator(cfg.Log)
	inquiryRepo := repository.NewMongoInquiryRepository(cfg)
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaEventsTopic, ServiceName, cfg.Log)

	inquiryService := service.NewInquiryService(
		inquiryRepo,
		inquiryValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Inquiry service initialized", "database", cfg.MongoDatabaseName)
	return inquiryService
}
