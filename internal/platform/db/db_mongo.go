package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"blog_backend/internal/config"
)

// OpenMongo connects to the document store and ensures the indexes the
// repositories rely on. The unique index on users.email is what closes the
// concurrent-registration race at the store level.
func OpenMongo(cfg config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	database := client.Database(cfg.MongoDB)

	users := database.Collection("users")
	_, err = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reset_token", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(
				bson.D{{Key: "reset_token", Value: bson.D{{Key: "$exists", Value: true}}}},
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user indexes: %w", err)
	}

	posts := database.Collection("posts")
	_, err = posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure post indexes: %w", err)
	}

	slog.Info("Mongo connection successful", "database", cfg.MongoDB)
	return database, nil
}
