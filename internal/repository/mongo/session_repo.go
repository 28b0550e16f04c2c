package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "workout_sessions"

// visibleSessions hides sessions whose reps are still being written. Documents
// from before the marker existed have no ingestStatus and stay visible.
var visibleSessions = bson.M{"$ne": domain.IngestPending}

type mongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.AthleteName == "" || session.ActivityName == "" {
		return primitive.NilObjectID, errors.New("session athleteName and activityName are required")
	}

	session.ID = primitive.NewObjectID()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return primitive.NilObjectID, err
	}
	return session.ID, nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *mongoSessionRepository) ListByAthleteName(ctx context.Context, name string) ([]domain.WorkoutSession, error) {
	return r.find(ctx, bson.M{"athleteName": name, "ingestStatus": visibleSessions}, 0)
}

func (r *mongoSessionRepository) ListByAthleteID(ctx context.Context, athleteID string) ([]domain.WorkoutSession, error) {
	return r.find(ctx, bson.M{"athleteId": athleteID, "ingestStatus": visibleSessions}, 0)
}

func (r *mongoSessionRepository) List(ctx context.Context, limit int64) ([]domain.WorkoutSession, error) {
	return r.find(ctx, bson.M{}, limit)
}

// AthleteSummaries groups visible sessions by athlete name. The profile picture
// is the newest non-empty one, so a later session without a picture does not
// hide an earlier one.
func (r *mongoSessionRepository) AthleteSummaries(ctx context.Context) ([]domain.AthleteSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ingestStatus": visibleSessions}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$athleteName"},
			{Key: "totalWorkouts", Value: bson.M{"$sum": 1}},
			{Key: "lastWorkout", Value: bson.M{"$max": "$timestamp"}},
			{Key: "profilePics", Value: bson.M{"$push": "$athleteProfilePic"}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"profilePic": bson.M{"$ifNull": bson.A{
				bson.M{"$arrayElemAt": bson.A{
					bson.M{"$filter": bson.M{
						"input": "$profilePics",
						"cond":  bson.M{"$gt": bson.A{"$$this", ""}},
					}},
					0,
				}},
				"",
			}},
		}}},
		{{Key: "$project", Value: bson.M{"profilePics": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastWorkout", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []domain.AthleteSummary{}
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *mongoSessionRepository) SetIngestStatus(ctx context.Context, id primitive.ObjectID, status domain.IngestStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"ingestStatus": status}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.WorkoutSession, error) {
	return r.find(ctx, bson.M{
		"ingestStatus": domain.IngestPending,
		"createdAt":    bson.M{"$lt": cutoff},
	}, 0)
}

func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoSessionRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// find returns matching sessions newest first; limit <= 0 means no limit.
func (r *mongoSessionRepository) find(ctx context.Context, filter bson.M, limit int64) ([]domain.WorkoutSession, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.WorkoutSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func sessionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// athlete history, newest first
			Keys: bson.D{{Key: "athleteName", Value: 1}, {Key: "timestamp", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			// reconcile pass
			Keys: bson.D{{Key: "ingestStatus", Value: 1}, {Key: "createdAt", Value: 1}},
		},
	}
}
