// Package mongodb implements the remote catalog source on MongoDB.
//
// Layout:
//
//	products   {_id, name, description, images}
//	favorites  {user_id, product_id, name, created_at, updated_at}
//	           unique index on (user_id, product_id)
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agentstation/productmap/pkg/constants"
	"github.com/agentstation/productmap/pkg/errors"
)

// Config describes the MongoDB connection.
type Config struct {
	URI         string        `mapstructure:"uri" yaml:"uri" validate:"required,startswith=mongodb"`
	Database    string        `mapstructure:"database" yaml:"database" validate:"required"`
	AppName     string        `mapstructure:"app_name" yaml:"app_name"`
	MaxPoolSize uint64        `mapstructure:"max_pool_size" yaml:"max_pool_size"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a local development configuration.
func DefaultConfig() Config {
	return Config{
		URI:         constants.DefaultMongoURI,
		Database:    constants.DefaultMongoDatabase,
		AppName:     "productmap",
		MaxPoolSize: 10,
		Timeout:     constants.DefaultTimeout,
	}
}

// DB holds a connected client and its database.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect dials MongoDB and pings it.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.URI == "" {
		cfg.URI = constants.DefaultMongoURI
	}
	if cfg.Database == "" {
		cfg.Database = constants.DefaultMongoDatabase
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	if cfg.AppName != "" {
		clientOptions.SetAppName(cfg.AppName)
	}
	if cfg.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.Timeout > 0 {
		clientOptions.SetTimeout(cfg.Timeout)
	}
	clientOptions.SetMaxConnIdleTime(30 * time.Second)

	connectCtx, cancel := context.WithTimeout(ctx, constants.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, errors.WrapResource("connect", "mongodb", cfg.Database, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.WrapResource("ping", "mongodb", cfg.Database, err)
	}

	return &DB{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// Close disconnects the client.
func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}
