package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scribble/internal/observability"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo connects to MongoDB and returns the named database. The caller
// disconnects through db.Client().
func ConnectMongo(ctx context.Context, url, name string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo failed: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo failed: %w", err)
	}

	observability.Logger.Info("MongoDB connected successfully", slog.String("database", name))
	return client.Database(name), nil
}
