package service

import (
	"context"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/repository"
)

const defaultAdminLimit = 100

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type CollectionStats struct {
	Users       int64 `json:"users"`
	Sessions    int64 `json:"sessions"`
	RepImages   int64 `json:"repImages"`
	Connections int64 `json:"connections"`
}

type HealthReport struct {
	Database string          `json:"database"`
	Error    string          `json:"error,omitempty"`
	Counts   CollectionStats `json:"counts"`
}

// AdminService backs the read-only /db views.
type AdminService interface {
	Health(ctx context.Context) *HealthReport
	Stats(ctx context.Context) (*CollectionStats, error)
	Users(ctx context.Context) ([]domain.User, error)
	Sessions(ctx context.Context, limit int64) ([]domain.WorkoutSession, error)
	// Reps lists the reps of sessionID, or the latest reps of any session
	// when sessionID is empty.
	Reps(ctx context.Context, sessionID string, limit int64) ([]domain.RepImage, error)
	Athletes(ctx context.Context) ([]domain.AthleteSummary, error)
}

type adminService struct {
	pinger         Pinger
	userRepo       repository.UserRepository
	sessionRepo    repository.SessionRepository
	repImageRepo   repository.RepImageRepository
	connectionRepo repository.ConnectionRepository
}

func NewAdminService(
	pinger Pinger,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	repImageRepo repository.RepImageRepository,
	connectionRepo repository.ConnectionRepository,
) AdminService {
	return &adminService{
		pinger:         pinger,
		userRepo:       userRepo,
		sessionRepo:    sessionRepo,
		repImageRepo:   repImageRepo,
		connectionRepo: connectionRepo,
	}
}

// Health never fails; an unreachable store is reported in the body.
func (s *adminService) Health(ctx context.Context) *HealthReport {
	if err := s.pinger.Ping(ctx); err != nil {
		return &HealthReport{Database: "disconnected", Error: err.Error()}
	}
	report := &HealthReport{Database: "connected"}
	if stats, err := s.Stats(ctx); err == nil {
		report.Counts = *stats
	} else {
		report.Error = err.Error()
	}
	return report
}

func (s *adminService) Stats(ctx context.Context) (*CollectionStats, error) {
	var (
		stats CollectionStats
		err   error
	)
	if stats.Users, err = s.userRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Sessions, err = s.sessionRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.RepImages, err = s.repImageRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Connections, err = s.connectionRepo.Count(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users returns all accounts; password hashes are never serialized.
func (s *adminService) Users(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx, "")
}

func (s *adminService) Sessions(ctx context.Context, limit int64) ([]domain.WorkoutSession, error) {
	return s.sessionRepo.List(ctx, adminLimit(limit))
}

func (s *adminService) Reps(ctx context.Context, sessionID string, limit int64) ([]domain.RepImage, error) {
	if sessionID != "" {
		return s.repImageRepo.ListBySession(ctx, sessionID)
	}
	return s.repImageRepo.List(ctx, adminLimit(limit))
}

// Athletes runs the roster aggregation without the cache.
func (s *adminService) Athletes(ctx context.Context) ([]domain.AthleteSummary, error) {
	return s.sessionRepo.AthleteSummaries(ctx)
}

func adminLimit(limit int64) int64 {
	if limit <= 0 {
		return defaultAdminLimit
	}
	return limit
}
