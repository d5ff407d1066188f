package config

import "time"

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
	StorageSQLite = "sqlite"
)

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStorageBackend = StorageMemory

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "spacebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultSQLitePath = "spacebook.db"

	DefaultWorkingHoursOpen  = "09:00"
	DefaultWorkingHoursClose = "18:00"
	DefaultTimeZone          = "UTC"

	DefaultLockTTL  = 10 * time.Second
	DefaultLockWait = 3 * time.Second

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultRateLimitBurst    = 10

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaEnabled          = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultNotifierGroupID       = "spacebook-notifier"

	DefaultPaginationLimit = 10
	MaxPaginationLimit     = 100
)
