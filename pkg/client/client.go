package client

import (
	"context"
	"database/sql"
	"time"

	"spacebook/pkg/db/sqlite"
	"spacebook/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Client struct {
	Mongo  *mongo.Client
	SQLite *sql.DB
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB",
			"error", err,
		)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetSQLite(log *logger.Logger, path string) {
	db, err := sqlite.Open(path)
	if err != nil {
		log.Fatal("Failed to open SQLite database",
			"error", err,
			"path", path,
		)
	}

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping SQLite database", "error", err)
	}

	log.Info("Successfully opened SQLite database", "path", path)
	c.SQLite = db
}

func (c *Client) GracefulShutdown(log *logger.Logger) {
	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		} else {
			log.Info("Disconnected from MongoDB")
		}
	}
	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			log.Error("Failed to close SQLite database", "error", err)
		} else {
			log.Info("Closed SQLite database")
		}
	}
}
