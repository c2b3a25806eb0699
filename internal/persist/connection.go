package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig describes the state database. Zero pool sizes and timeouts
// fall back to the driver-friendly defaults below.
type MongoConfig struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	MinPoolSize    uint64
	ConnectTimeout time.Duration
}

const (
	defaultMongoMaxPool        = 100
	defaultMongoConnectTimeout = 10 * time.Second
	mongoServerSelection       = 5 * time.Second
)

func mongoClientOptions(cfg MongoConfig) *options.ClientOptions {
	maxPool := cfg.MaxPoolSize
	if maxPool == 0 {
		maxPool = defaultMongoMaxPool
	}
	minPool := cfg.MinPoolSize
	if minPool > maxPool {
		minPool = maxPool
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultMongoConnectTimeout
	}

	return options.Client().
		ApplyURI(cfg.URI).
		SetAppName("storefront").
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(mongoServerSelection).
		SetMaxPoolSize(maxPool).
		SetMinPoolSize(minPool)
}

// ConnectMongoDB opens the client, checks it with a ping and returns the
// state database. A client that fails the ping is disconnected.
func ConnectMongoDB(ctx context.Context, cfg MongoConfig, log logrus.FieldLogger) (*mongo.Database, error) {
	opts := mongoClientOptions(cfg)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithFields(logrus.Fields{
		"database":      cfg.Database,
		"max_pool_size": *opts.MaxPoolSize,
	}).Info("connected to mongodb")
	return client.Database(cfg.Database), nil
}
