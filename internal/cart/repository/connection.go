package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnOptions sizes the cart store's connection pool. Zero values fall
// back to defaults suited to a single storefront instance.
type ConnOptions struct {
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

func (o *ConnOptions) withDefaults() ConnOptions {
	out := ConnOptions{
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		MaxPoolSize:            50,
		MinPoolSize:            5,
	}
	if o == nil {
		return out
	}
	if o.ConnectTimeout > 0 {
		out.ConnectTimeout = o.ConnectTimeout
	}
	if o.ServerSelectionTimeout > 0 {
		out.ServerSelectionTimeout = o.ServerSelectionTimeout
	}
	if o.MaxPoolSize > 0 {
		out.MaxPoolSize = o.MaxPoolSize
	}
	if o.MinPoolSize > 0 {
		out.MinPoolSize = o.MinPoolSize
	}
	return out
}

// ConnectMongoDB opens the cart database and verifies it is reachable
// before any handler takes traffic. The client is torn down again if the
// ping fails so a half-open connection never escapes.
func ConnectMongoDB(ctx context.Context, uri, database string, opts *ConnOptions) (*mongo.Database, error) {
	resolved := opts.withDefaults()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(resolved.ConnectTimeout).
		SetServerSelectionTimeout(resolved.ServerSelectionTimeout).
		SetMaxPoolSize(resolved.MaxPoolSize).
		SetMinPoolSize(resolved.MinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to cart store: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping cart store: %w", err)
	}

	return client.Database(database), nil
}
