package main

import (
	bookingsevents "spacebook/internal/bookings/events"
	bookingshandler "spacebook/internal/bookings/handler"
	bookingsrepo "spacebook/internal/bookings/repository"
	"spacebook/internal/bookings/scheduling"
	bookingsservice "spacebook/internal/bookings/service"
	bookingsvalidator "spacebook/internal/bookings/validator"
	resourceshandler "spacebook/internal/resources/handler"
	resourcesrepo "spacebook/internal/resources/repository"
	resourcesservice "spacebook/internal/resources/service"
	resourcesvalidator "spacebook/internal/resources/validator"
	"spacebook/pkg/app"
	"spacebook/pkg/clock"
	"spacebook/pkg/config"
	"spacebook/pkg/kafka"
	kafka_config "spacebook/pkg/kafka/config"
	kafkamiddleware "spacebook/pkg/kafka/middleware"

	"github.com/joho/godotenv"
)

const ServiceName = "bookings"

type stores struct {
	bookings  bookingsrepo.BookingStore
	resources resourcesrepo.ResourceRepository
}

func main() {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	if cfg.JWTSecret == "" {
		cfg.Log.Fatal("JWT_SECRET must be set for the bookings service")
	}
	cfg.SetStorage()

	cfg.Log.Info("Starting Bookings service")
	st := initStores(cfg)
	publisher, closePublisher := initPublisher(cfg)

	resourceService := resourcesservice.NewResourceService(
		st.resources,
		st.bookings,
		resourcesvalidator.NewResourceValidator(cfg.Log),
		clock.System,
		cfg,
	)
	bookingService := initBookingService(cfg, st, resourceService, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(closePublisher)
	serverApp.SetApp(st.bookings,
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		resourceshandler.NewResourceHandler(resourceService, cfg.Log),
	)
	serverApp.Run()
}

func initStores(cfg *config.Config) stores {
	var st stores
	switch cfg.StorageBackend {
	case config.StorageMongo:
		st.bookings = bookingsrepo.NewMongoBookingStore(cfg)
		st.resources = resourcesrepo.NewMongoResourceRepository(cfg)
	case config.StorageSQLite:
		st.bookings = bookingsrepo.NewSQLiteBookingStore(cfg.Client.SQLite)
		st.resources = resourcesrepo.NewSQLiteResourceRepository(cfg.Client.SQLite)
	default:
		st.bookings = bookingsrepo.NewMemoryBookingStore()
		st.resources = resourcesrepo.NewMemoryResourceRepository()
	}

	cfg.Log.Info("Storage initialized", "backend", cfg.StorageBackend)
	return st
}

func initPublisher(cfg *config.Config) (bookingsevents.Publisher, func()) {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return bookingsevents.NoopPublisher{}, func() {}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	metrics := kafkamiddleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.ProducerMiddleware())
	}

	publisher := bookingsevents.NewKafkaPublisher(producer)
	return publisher, func() {
		cfg.Log.Info("Closing Kafka producer", "metrics", metrics)
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
}

func initBookingService(
	cfg *config.Config,
	st stores,
	resources bookingsservice.ResourceDirectory,
	publisher bookingsevents.Publisher,
) bookingsservice.BookingService {
	window, err := scheduling.NewWorkingWindow(cfg.WorkingHoursOpen, cfg.WorkingHoursClose, cfg.Location)
	if err != nil {
		cfg.Log.Fatal("Invalid working hours", "error", err)
	}

	svc := bookingsservice.NewBookingService(
		st.bookings,
		resources,
		scheduling.NewPolicy(window, scheduling.WithNotBefore(clock.System)),
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		clock.System,
		cfg,
	)

	cfg.Log.Info("Booking service initialized",
		"backend", cfg.StorageBackend,
		"working_window", window.String(),
	)
	return svc
}
