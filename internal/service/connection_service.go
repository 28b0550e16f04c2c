package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const statusNone = "none"

// Counterpart is the profile of the other side of a connection, as shown in
// request lists.
type Counterpart struct {
	UserID     string      `json:"userId"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	ProfilePic string      `json:"profilePic,omitempty"`
	District   string      `json:"district,omitempty"`
}

// ConnectionView is a connection enriched with the counterpart's profile.
// User is nil when the counterpart account no longer exists.
type ConnectionView struct {
	domain.Connection
	User *Counterpart `json:"user"`
}

type ConnectionStatusView struct {
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
}

type ConnectionService interface {
	SendRequest(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error)
	Accept(ctx context.Context, requestID string) (*domain.Connection, error)
	Reject(ctx context.Context, requestID string) (*domain.Connection, error)
	Status(ctx context.Context, userID1, userID2 string) (*ConnectionStatusView, error)
	// Discover lists users that are neither userID nor already connected to it.
	Discover(ctx context.Context, userID string) ([]domain.User, error)
	PendingReceived(ctx context.Context, userID string) ([]ConnectionView, error)
	SentRequests(ctx context.Context, userID string) ([]ConnectionView, error)
	// Connections lists the accepted connections of userID.
	Connections(ctx context.Context, userID string) ([]ConnectionView, error)
}

type connectionService struct {
	connectionRepo repository.ConnectionRepository
	userRepo       repository.UserRepository
}

func NewConnectionService(connectionRepo repository.ConnectionRepository, userRepo repository.UserRepository) ConnectionService {
	return &connectionService{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
	}
}

// SendRequest creates a pending request. Any existing connection between the
// pair, whatever its status or direction, blocks a new one.
func (s *connectionService) SendRequest(ctx context.Context, fromUserID, toUserID string) (*domain.Connection, error) {
	if fromUserID == "" || toUserID == "" {
		return nil, validationError("fromUserId and toUserId are required")
	}
	if fromUserID == toUserID {
		return nil, validationError("cannot connect a user to themselves")
	}
	for _, id := range []string{fromUserID, toUserID} {
		if _, err := s.userRepo.GetByUserID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	_, err := s.connectionRepo.FindBetween(ctx, fromUserID, toUserID)
	if err == nil {
		return nil, ErrConnectionExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	conn := &domain.Connection{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Status:     domain.ConnectionPending,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.connectionRepo.Create(ctx, conn); err != nil {
		// unique pair index: a concurrent request won
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConnectionExists
		}
		return nil, err
	}

	log.Debugf("connection request [%s] -> [%s]", fromUserID, toUserID)
	return conn, nil
}

func (s *connectionService) Accept(ctx context.Context, requestID string) (*domain.Connection, error) {
	return s.setStatus(ctx, requestID, domain.ConnectionAccepted)
}

func (s *connectionService) Reject(ctx context.Context, requestID string) (*domain.Connection, error) {
	return s.setStatus(ctx, requestID, domain.ConnectionRejected)
}

// setStatus writes a terminal status. Answering the same request twice
// rewrites the status and its timestamp.
func (s *connectionService) setStatus(ctx context.Context, requestID string, status domain.ConnectionStatus) (*domain.Connection, error) {
	id, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return nil, validationError("invalid request id %q", requestID)
	}

	conn, err := s.connectionRepo.SetStatus(ctx, id, status, time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConnectionNotFound
		}
		return nil, err
	}
	return conn, nil
}

func (s *connectionService) Status(ctx context.Context, userID1, userID2 string) (*ConnectionStatusView, error) {
	if userID1 == "" || userID2 == "" {
		return nil, validationError("both user ids are required")
	}

	conn, err := s.connectionRepo.FindBetween(ctx, userID1, userID2)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ConnectionStatusView{Connected: false, Status: statusNone}, nil
		}
		return nil, err
	}
	return &ConnectionStatusView{
		Connected: conn.Status == domain.ConnectionAccepted,
		Status:    string(conn.Status),
	}, nil
}

// Discover hides accepted connections only; users with a pending or
// rejected request stay discoverable.
func (s *connectionService) Discover(ctx context.Context, userID string) ([]domain.User, error) {
	if userID == "" {
		return nil, validationError("userId is required")
	}

	accepted, err := s.connectionRepo.ListForUser(ctx, userID, domain.ConnectionAccepted)
	if err != nil {
		return nil, err
	}

	exclude := make([]string, 0, len(accepted)+1)
	exclude = append(exclude, userID)
	for i := range accepted {
		exclude = append(exclude, accepted[i].Counterpart(userID))
	}
	return s.userRepo.ListExcluding(ctx, exclude)
}

func (s *connectionService) PendingReceived(ctx context.Context, userID string) ([]ConnectionView, error) {
	if userID == "" {
		return nil, validationError("userId is required")
	}
	conns, err := s.connectionRepo.ListReceived(ctx, userID, domain.ConnectionPending)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, userID, conns)
}

func (s *connectionService) SentRequests(ctx context.Context, userID string) ([]ConnectionView, error) {
	if userID == "" {
		return nil, validationError("userId is required")
	}
	conns, err := s.connectionRepo.ListSent(ctx, userID, domain.ConnectionPending)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, userID, conns)
}

func (s *connectionService) Connections(ctx context.Context, userID string) ([]ConnectionView, error) {
	if userID == "" {
		return nil, validationError("userId is required")
	}
	conns, err := s.connectionRepo.ListForUser(ctx, userID, domain.ConnectionAccepted)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, userID, conns)
}

// enrich attaches the counterpart profile of userID to every connection with
// a single user lookup.
func (s *connectionService) enrich(ctx context.Context, userID string, conns []domain.Connection) ([]ConnectionView, error) {
	views := make([]ConnectionView, len(conns))
	if len(conns) == 0 {
		return views, nil
	}

	ids := make([]string, len(conns))
	for i := range conns {
		ids[i] = conns[i].Counterpart(userID)
	}
	users, err := s.userRepo.GetByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Counterpart, len(users))
	for _, u := range users {
		byID[u.UserID] = &Counterpart{
			UserID:     u.UserID,
			Name:       u.Name,
			Email:      u.Email,
			Role:       u.Role,
			ProfilePic: u.ProfilePic,
			District:   u.District,
		}
	}

	for i := range conns {
		views[i] = ConnectionView{Connection: conns[i], User: byID[ids[i]]}
	}
	return views, nil
}
