package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection    = "users"
	FeedbackCollection = "feedback"
	CommentsCollection = "comments"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Mongo owns the client and the application database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func Connect(ctx context.Context, mongoURI, dbName string, log zerolog.Logger) (*Mongo, error) {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Info().Str("database", dbName).Msg("connecting to MongoDB")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info().Msg("connected to MongoDB")
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the stores rely on. The unique email index is
// what makes registration conflicts reliable.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("uniq_email").SetUnique(true),
			},
		},
		FeedbackCollection: {
			{
				Keys: bson.D{
					{Key: "status", Value: 1},
					{Key: "category", Value: 1},
					{Key: "created_at", Value: -1},
				},
				Options: options.Index().SetName("idx_status_category_created"),
			},
			{
				Keys:    bson.D{{Key: "created_by", Value: 1}},
				Options: options.Index().SetName("idx_created_by"),
			},
		},
		CommentsCollection: {
			{
				Keys: bson.D{
					{Key: "feedback_id", Value: 1},
					{Key: "created_at", Value: 1},
				},
				Options: options.Index().SetName("idx_feedback_created"),
			},
		},
	}

	for col, idx := range indexes {
		if _, err := m.DB.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
