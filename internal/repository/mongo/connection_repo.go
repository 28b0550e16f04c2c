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

const connectionCollectionName = "connections"

type mongoConnectionRepository struct {
	collection *mongo.Collection
}

func NewMongoConnectionRepository(db *mongo.Database) repository.ConnectionRepository {
	return &mongoConnectionRepository{
		collection: db.Collection(connectionCollectionName),
	}
}

// Create inserts a new connection. The unique pairKey index turns a lost race
// between two concurrent requests for the same pair into ErrDuplicate.
func (r *mongoConnectionRepository) Create(ctx context.Context, conn *domain.Connection) (primitive.ObjectID, error) {
	if conn.FromUserID == "" || conn.ToUserID == "" {
		return primitive.NilObjectID, errors.New("connection fromUserId and toUserId are required")
	}

	conn.ID = primitive.NewObjectID()
	conn.PairKey = domain.PairKey(conn.FromUserID, conn.ToUserID)
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now().UTC()
	}
	if conn.Status == "" {
		conn.Status = domain.ConnectionPending
	}

	if _, err := r.collection.InsertOne(ctx, conn); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return conn.ID, nil
}

func (r *mongoConnectionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindBetween matches both directions so documents written without a pairKey
// are still found.
func (r *mongoConnectionRepository) FindBetween(ctx context.Context, userA, userB string) (*domain.Connection, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"fromUserId": userA, "toUserId": userB},
		bson.M{"fromUserId": userB, "toUserId": userA},
	}})
}

func (r *mongoConnectionRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.ConnectionStatus, at time.Time) (*domain.Connection, error) {
	set := bson.M{"status": status}
	switch status {
	case domain.ConnectionAccepted:
		set["acceptedAt"] = at
	case domain.ConnectionRejected:
		set["rejectedAt"] = at
	}

	var conn domain.Connection
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *mongoConnectionRepository) ListReceived(ctx context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error) {
	return r.find(ctx, withStatus(bson.M{"toUserId": userID}, status))
}

func (r *mongoConnectionRepository) ListSent(ctx context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error) {
	return r.find(ctx, withStatus(bson.M{"fromUserId": userID}, status))
}

func (r *mongoConnectionRepository) ListForUser(ctx context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error) {
	return r.find(ctx, withStatus(bson.M{"$or": bson.A{
		bson.M{"fromUserId": userID},
		bson.M{"toUserId": userID},
	}}, status))
}

func (r *mongoConnectionRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoConnectionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Connection, error) {
	var conn domain.Connection
	err := r.collection.FindOne(ctx, filter).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &conn, nil
}

func (r *mongoConnectionRepository) find(ctx context.Context, filter bson.M) ([]domain.Connection, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	conns := []domain.Connection{}
	if err = cursor.All(ctx, &conns); err != nil {
		return nil, err
	}
	return conns, nil
}

// withStatus adds a status filter unless status is empty.
func withStatus(filter bson.M, status domain.ConnectionStatus) bson.M {
	if status != "" {
		filter["status"] = status
	}
	return filter
}

func connectionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// partial so that legacy documents without a pairKey don't collide on null
			Keys: bson.D{{Key: "pairKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"pairKey": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "toUserId", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "fromUserId", Value: 1}, {Key: "status", Value: 1}},
		},
	}
}
