package config

// This file defines the MongoDB client constructor. Mongo holds the chat
// message documents and per-group chat summaries; everything else lives in
// MySQL. Like the Redis constructor, a connection failure at startup returns
// nil so the caller can run with chat disabled instead of crashing.

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoDatabase connects to MongoDB using MONGO_URI (default
// mongodb://localhost:27017) and returns the database named by MONGO_DB
// (default "everydaycare_chat"). Returns nil when the server is unreachable.
func NewMongoDatabase() *mongo.Database {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	name := os.Getenv("MONGO_DB")
	if name == "" {
		name = "everydaycare_chat"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil
	}
	return client.Database(name)
}
