// Package mongodb stores the ledger in MongoDB. Uniqueness of the active
// session per vehicle is enforced by a partial unique index.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"parkledger/internal/domain"
)

const (
	colSessions = "parking_sessions"
	colUsers    = "users"
	colFeedback = "feedback"

	idxActiveVehicle = "parking_sessions_active_vehicle_uidx"
)

// Connect opens a client and verifies the primary is reachable.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	zap.S().Infof("Successfully connected to MongoDB database %q", database)
	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes every collection relies on. It is
// idempotent and runs on start-up as well as from the migrate command.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for col, models := range migrationIndexes() {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongodb: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSessions: {
			{
				Keys: bson.D{{Key: "vehicle_number", Value: 1}},
				Options: options.Index().
					SetName(idxActiveVehicle).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": string(domain.SessionActive)}),
			},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "entry_time", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "exit_time", Value: -1}}},
		},
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colFeedback: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func now() time.Time {
	return time.Now().UTC()
}
