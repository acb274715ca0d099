package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Open connects to MongoDB and verifies the connection.  The returned
// database handle owns the client; callers close it with Close at
// shutdown.
func Open(ctx context.Context, uri, name string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25).
		SetConnectTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	// Ping with timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client.Database(name), nil
}

// Close disconnects the client backing the database handle.
func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// EnsureIndexes creates the unique and lookup indexes the application
// relies on.  Uniqueness of emails, Google ids and case numbers is
// enforced here rather than by check-then-write in handlers, so races
// surface as duplicate key errors.  Creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	type spec struct {
		collection string
		models     []mongo.IndexModel
	}
	specs := []spec{
		{"users", []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		}},
		{"cases", []mongo.IndexModel{
			{Keys: bson.D{{Key: "case_number", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "lawyer_id", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
		{"notes", []mongo.IndexModel{
			{Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "updatedAt", Value: -1}}},
		}},
		{"speeches", []mongo.IndexModel{
			{Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "updatedAt", Value: -1}}},
		}},
		{"documents", []mongo.IndexModel{
			{Keys: bson.D{{Key: "case_id", Value: 1}, {Key: "createdAt", Value: -1}}},
		}},
	}
	for _, s := range specs {
		if _, err := db.Collection(s.collection).Indexes().CreateMany(ctx, s.models); err != nil {
			return err
		}
	}
	return nil
}
