package docdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"referral-intake/internal/shared/telemetry"
)

const defaultPingTimeout = 5 * time.Second

// IsMongoURI reports whether a connection string targets MongoDB.
func IsMongoURI(uri string) bool {
	lower := strings.ToLower(strings.TrimSpace(uri))
	return strings.HasPrefix(lower, "mongodb://") || strings.HasPrefix(lower, "mongodb+srv://")
}

// Connect opens a MongoDB client and verifies connectivity against the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	telemetry.Info("mongo.init", map[string]any{"database": DatabaseFromURI(uri, "")})
	return client, nil
}

// DatabaseFromURI returns the database named in the URI path, or def when the
// URI does not name one.
func DatabaseFromURI(uri, def string) string {
	parsed, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return def
	}
	if name := strings.Trim(parsed.Path, "/"); name != "" {
		return name
	}
	return def
}
