package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"parkledger/internal/config"
	"parkledger/internal/repository"
	"parkledger/internal/repository/memory"
	"parkledger/internal/repository/mongodb"
	"parkledger/internal/repository/postgresql"
)

type storage struct {
	sessions repository.ParkingSessionRepository
	users    repository.UserRepository
	feedback repository.FeedbackRepository

	migrate func(ctx context.Context) error
	ping    func(ctx context.Context) error
	close   func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		db, err := postgresql.NewDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		zap.S().Infof("Connected to PostgreSQL %s:%d/%s using driver %q", cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBDriver)
		return &storage{
			sessions: postgresql.NewPgParkingSessionRepository(db),
			users:    postgresql.NewPgUserRepository(db),
			feedback: postgresql.NewPgFeedbackRepository(db),
			migrate:  func(ctx context.Context) error { return postgresql.Migrate(ctx, db) },
			ping:     db.PingContext,
			close:    func() { closeDB(db) },
		}, nil

	case config.StorageDriverMongo:
		client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &storage{
			sessions: mongodb.NewParkingSessionRepository(db),
			users:    mongodb.NewUserRepository(db),
			feedback: mongodb.NewFeedbackRepository(db),
			migrate:  func(ctx context.Context) error { return mongodb.EnsureIndexes(ctx, db) },
			ping:     func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close:    func() { disconnectMongo(client) },
		}, nil

	case config.StorageDriverMemory:
		zap.S().Warn("Using in-memory storage, nothing will survive a restart")
		return &storage{
			sessions: memory.NewParkingSessionRepository(),
			users:    memory.NewUserRepository(),
			feedback: memory.NewFeedbackRepository(),
			migrate:  func(context.Context) error { return nil },
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		zap.S().Warnf("Error closing database: %v", err)
	}
}

func disconnectMongo(client *mongo.Client) {
	if err := client.Disconnect(context.Background()); err != nil {
		zap.S().Warnf("Error disconnecting from MongoDB: %v", err)
	}
}
