package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const repImageCollectionName = "rep_images"

const duplicateKeyCode = 11000

type mongoRepImageRepository struct {
	collection *mongo.Collection
}

func NewMongoRepImageRepository(db *mongo.Database) repository.RepImageRepository {
	return &mongoRepImageRepository{
		collection: db.Collection(repImageCollectionName),
	}
}

// InsertMany writes all reps in one unordered bulk insert, so a duplicate
// (sessionId, repNumber) only drops that document. When every write error is a
// duplicate, the inserted count is returned together with ErrDuplicate.
func (r *mongoRepImageRepository) InsertMany(ctx context.Context, reps []domain.RepImage) (int, error) {
	if len(reps) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(reps))
	for i := range reps {
		reps[i].ID = primitive.NewObjectID()
		if reps[i].CreatedAt.IsZero() {
			reps[i].CreatedAt = now
		}
		docs[i] = reps[i]
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(reps), nil
	}

	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) || bulkErr.WriteConcernError != nil {
		return 0, err
	}
	for _, we := range bulkErr.WriteErrors {
		if we.Code != duplicateKeyCode {
			return len(reps) - len(bulkErr.WriteErrors), err
		}
	}

	skipped := len(bulkErr.WriteErrors)
	return len(reps) - skipped, fmt.Errorf("%w: %d rep(s) skipped", repository.ErrDuplicate, skipped)
}

func (r *mongoRepImageRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.RepImage, error) {
	return r.find(ctx, bson.M{"sessionId": sessionID}, 0)
}

func (r *mongoRepImageRepository) ListBySessions(ctx context.Context, sessionIDs []string) ([]domain.RepImage, error) {
	if len(sessionIDs) == 0 {
		return []domain.RepImage{}, nil
	}
	return r.find(ctx, bson.M{"sessionId": bson.M{"$in": sessionIDs}}, 0)
}

func (r *mongoRepImageRepository) List(ctx context.Context, limit int64) ([]domain.RepImage, error) {
	return r.find(ctx, bson.M{}, limit)
}

func (r *mongoRepImageRepository) DeleteBySession(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoRepImageRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoRepImageRepository) find(ctx context.Context, filter bson.M, limit int64) ([]domain.RepImage, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionId", Value: 1}, {Key: "repNumber", Value: 1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reps := []domain.RepImage{}
	if err = cursor.All(ctx, &reps); err != nil {
		return nil, err
	}
	return reps, nil
}

func repImageIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "repNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}
