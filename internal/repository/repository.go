package repository

import (
	"context"
	"time"

	"alcyxob/workout-telemetry/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)
	GetByUserIDs(ctx context.Context, userIDs []string) ([]domain.User, error)
	// List returns all users, or only those with role when role is non-empty.
	List(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListExcluding(ctx context.Context, userIDs []string) ([]domain.User, error)
	// Update applies update to an existing user; ErrNotFound when missing.
	Update(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
	AddSkills(ctx context.Context, userID string, skills []string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// SessionRepository defines the interface for workout session documents.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	// ListByAthleteName returns the athlete's sessions newest first.
	ListByAthleteName(ctx context.Context, name string) ([]domain.WorkoutSession, error)
	ListByAthleteID(ctx context.Context, athleteID string) ([]domain.WorkoutSession, error)
	List(ctx context.Context, limit int64) ([]domain.WorkoutSession, error)
	// AthleteSummaries groups sessions by athlete name, most recent first.
	AthleteSummaries(ctx context.Context) ([]domain.AthleteSummary, error)
	SetIngestStatus(ctx context.Context, id primitive.ObjectID, status domain.IngestStatus) error
	// ListStalePending returns sessions still pending that were created before cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.WorkoutSession, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// RepImageRepository defines the interface for per-rep image documents.
type RepImageRepository interface {
	// InsertMany writes reps unordered. Duplicate (sessionId, repNumber)
	// entries are skipped; the number of skipped documents is returned with
	// ErrDuplicate. Any other failure is returned as is.
	InsertMany(ctx context.Context, reps []domain.RepImage) (inserted int, err error)
	// ListBySession returns the reps of a session ordered by repNumber.
	ListBySession(ctx context.Context, sessionID string) ([]domain.RepImage, error)
	ListBySessions(ctx context.Context, sessionIDs []string) ([]domain.RepImage, error)
	List(ctx context.Context, limit int64) ([]domain.RepImage, error)
	DeleteBySession(ctx context.Context, sessionID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// ConnectionRepository defines the interface for social connections.
type ConnectionRepository interface {
	// Create inserts a pending connection; ErrDuplicate when the pair already has one.
	Create(ctx context.Context, conn *domain.Connection) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Connection, error)
	// FindBetween returns the connection for the unordered pair, or ErrNotFound.
	FindBetween(ctx context.Context, userA, userB string) (*domain.Connection, error)
	// SetStatus writes status and its timestamp and returns the updated connection.
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.ConnectionStatus, at time.Time) (*domain.Connection, error)
	ListReceived(ctx context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error)
	ListSent(ctx context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error)
	// ListForUser returns connections in either direction with the given status.
	ListForUser(ctx context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error)
	Count(ctx context.Context) (int64, error)
}
