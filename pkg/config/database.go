package config

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	// MongoDB is the application database on Mongo.
	MongoDB *mongo.Database
}

// InitDB initializes and returns the database connections
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	postgresDB, err := initPostgres(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	mongoClient, err := initMongo(ctx, cfg.MongoURI)
	if err != nil {
		closePostgres(postgresDB)
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &DB{
		Postgres: postgresDB,
		Mongo:    mongoClient,
		MongoDB:  mongoClient.Database(cfg.MongoDatabase),
	}, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsProduction() {
		level = logger.Error
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresConnStr), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = sqlDB.PingContext(pingCtx); err != nil {
		return nil, err
	}

	log.Info().Msg("Successfully connected to PostgreSQL")
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Msg("Successfully connected to MongoDB")
	return client, nil
}

// PingPostgres checks the PostgreSQL connection.
func (db *DB) PingPostgres(ctx context.Context) error {
	sqlDB, err := db.Postgres.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PingMongo checks the MongoDB primary.
func (db *DB) PingMongo(ctx context.Context) error {
	return db.Mongo.Ping(ctx, readpref.Primary())
}

func closePostgres(pg *gorm.DB) {
	sqlDB, err := pg.DB()
	if err != nil {
		log.Error().Err(err).Msg("Error getting SQL DB from GORM")
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing PostgreSQL connection")
		return
	}
	log.Info().Msg("PostgreSQL connection closed")
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		closePostgres(db.Postgres)
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("Error closing MongoDB connection")
		} else {
			log.Info().Msg("MongoDB connection closed")
		}
	}
}
