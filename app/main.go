package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fitnova/clubapi/internal/bookingservice"
	"github.com/fitnova/clubapi/internal/common"
	"github.com/fitnova/clubapi/internal/contentservice"
	"github.com/fitnova/clubapi/internal/mailservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	contentService *contentservice.ContentService
	bookingService *bookingservice.BookingService
	mailService    *mailservice.MailService
	broker         *common.MessageBroker
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the message broker
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	// Setup the exchange, queue, and binding key
	err = common.SetupBookingExchange(broker)
	if err != nil {
		logger.Error("failed to setup the booking exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the services
	contentService, err := contentservice.NewContentService(cfg.ContentAPIURL, cfg.ContentAPIUser, cfg.ContentAPIPassword, cfg.ContentCacheTTL, common.NewCache(), logger)
	if err != nil {
		logger.Error("failed to initialize the content service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config:         cfg,
		logger:         logger,
		contentService: contentService,
		bookingService: bookingservice.NewBookingService(broker),
		broker:         broker,
		mailService:    mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.ClubNotifyEmail, cfg.MailPort, logger),
	}

	// Initialize the consumer
	go app.mailService.SendBookingNotification()
	defer app.mailService.Close()

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
