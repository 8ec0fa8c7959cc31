package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo bundles the client and the collections the service uses. It is
// constructed once at startup and handed to the components that need it.
type Mongo struct {
	Client       *mongo.Client
	Recipes      *mongo.Collection
	RecipeCounts *mongo.Collection
	Users        *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	database := client.Database(dbName)
	return &Mongo{
		Client:       client,
		Recipes:      database.Collection("recipes"),
		RecipeCounts: database.Collection("recipeCounts"),
		Users:        database.Collection("users"),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
