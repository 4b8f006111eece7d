package database

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Client *mongo.Client

func databaseName() string {
	name := os.Getenv("DATABASE_NAME")
	if name == "" {
		name = "golang-tourdb"
	}
	return name
}

// Connect establishes the client and pings the deployment. Must be called
// from main before any collection is used.
func Connect() *mongo.Client {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	log.Print("Connected to MongoDB")
	Client = client
	return client
}

func OpenCollection(collectionName string) *mongo.Collection {
	if Client == nil {
		log.Panic("database.Connect must be called before OpenCollection")
	}
	return Client.Database(databaseName()).Collection(collectionName)
}

// EnsureIndexes creates the uniqueness and geospatial indexes the models rely
// on. Safe to call on every startup.
func EnsureIndexes(ctx context.Context) error {
	users := OpenCollection("users")
	tours := OpenCollection("tours")
	reviews := OpenCollection("reviews")

	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = tours.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "price", Value: 1}, {Key: "ratingsAverage", Value: -1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
		{Keys: bson.D{{Key: "startLocation", Value: "2dsphere"}}},
	})
	if err != nil {
		return err
	}

	// One review per (tour, user) pair.
	_, err = reviews.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tour", Value: 1}, {Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
