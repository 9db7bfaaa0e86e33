package database

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/feedback-portal/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FeedbackStore struct {
	col *mongo.Collection
}

func NewFeedbackStore(db *mongo.Database) *FeedbackStore {
	return &FeedbackStore{col: db.Collection(FeedbackCollection)}
}

func (s *FeedbackStore) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, f)
	return err
}

func (s *FeedbackStore) FindFeedback(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	var f models.Feedback
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFeedback returns one page of matching items and the total match count.
func (s *FeedbackStore) ListFeedback(ctx context.Context, q FeedbackQuery) ([]models.Feedback, int64, error) {
	filter := FeedbackFilter(q)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(FeedbackSort(q)).
		SetSkip(q.Skip()).
		SetLimit(q.Limit)

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	items := []models.Feedback{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *FeedbackStore) UpdateFeedbackStatus(ctx context.Context, id primitive.ObjectID, status models.Status, now time.Time) (*models.Feedback, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var f models.Feedback
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
