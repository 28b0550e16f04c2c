package service

import (
	"context"
	"errors"
	"math"

	"alcyxob/workout-telemetry/internal/cache"
	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const excellentFormScore = "Excellent"

// WorkoutView is a session joined with its reps. Screenshots lists the rep
// images in rep order and RepDetails flattens each rep's metrics.
type WorkoutView struct {
	domain.WorkoutSession
	Reps        []domain.RepImage        `json:"reps"`
	Screenshots []string                 `json:"screenshots"`
	RepDetails  []map[string]interface{} `json:"repDetails"`
}

type QueryService interface {
	ListByAthlete(ctx context.Context, athleteName string) ([]WorkoutView, error)
	ListAthletes(ctx context.Context) ([]domain.AthleteSummary, error)
	RepsForSession(ctx context.Context, sessionID string) ([]domain.RepImage, error)
	StatsForUser(ctx context.Context, userID string) (*domain.UserStats, error)
	GetSession(ctx context.Context, sessionID string) (*domain.WorkoutSession, error)
}

type queryService struct {
	sessionRepo  repository.SessionRepository
	repImageRepo repository.RepImageRepository
	roster       *cache.RosterCache
}

func NewQueryService(
	sessionRepo repository.SessionRepository,
	repImageRepo repository.RepImageRepository,
	roster *cache.RosterCache,
) QueryService {
	return &queryService{
		sessionRepo:  sessionRepo,
		repImageRepo: repImageRepo,
		roster:       roster,
	}
}

// ListByAthlete returns the athlete's sessions newest first, each joined with
// its reps.
func (s *queryService) ListByAthlete(ctx context.Context, athleteName string) ([]WorkoutView, error) {
	if athleteName == "" {
		return nil, validationError("athlete name is required")
	}

	sessions, err := s.sessionRepo.ListByAthleteName(ctx, athleteName)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []WorkoutView{}, nil
	}

	ids := make([]string, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID.Hex()
	}
	reps, err := s.repImageRepo.ListBySessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	bySession := make(map[string][]domain.RepImage, len(sessions))
	for _, rep := range reps {
		bySession[rep.SessionID] = append(bySession[rep.SessionID], rep)
	}

	views := make([]WorkoutView, len(sessions))
	for i, session := range sessions {
		views[i] = newWorkoutView(session, bySession[session.ID.Hex()])
	}
	return views, nil
}

func newWorkoutView(session domain.WorkoutSession, reps []domain.RepImage) WorkoutView {
	view := WorkoutView{
		WorkoutSession: session,
		Reps:           reps,
		Screenshots:    []string{},
		RepDetails:     make([]map[string]interface{}, 0, len(reps)),
	}
	if view.Reps == nil {
		view.Reps = []domain.RepImage{}
	}

	for _, rep := range reps {
		if rep.ImageURL != "" {
			view.Screenshots = append(view.Screenshots, rep.ImageURL)
		}
		detail := make(map[string]interface{}, len(rep.Details)+3)
		for k, v := range rep.Details {
			detail[k] = v
		}
		detail["repNumber"] = rep.RepNumber
		detail["correct"] = rep.Correct
		detail["imageUrl"] = rep.ImageURL
		view.RepDetails = append(view.RepDetails, detail)
	}
	return view
}

// ListAthletes returns the athlete roster, most recently active first.
func (s *queryService) ListAthletes(ctx context.Context) ([]domain.AthleteSummary, error) {
	cached, gen, ok := s.roster.Get()
	if ok {
		return cached, nil
	}

	roster, err := s.sessionRepo.AthleteSummaries(ctx)
	if err != nil {
		return nil, err
	}
	s.roster.SetIfGeneration(gen, roster)
	return roster, nil
}

// RepsForSession returns the reps of a session ordered by rep number. An
// unknown session simply has no reps.
func (s *queryService) RepsForSession(ctx context.Context, sessionID string) ([]domain.RepImage, error) {
	if _, err := primitive.ObjectIDFromHex(sessionID); err != nil {
		return nil, validationError("invalid session id %q", sessionID)
	}
	return s.repImageRepo.ListBySession(ctx, sessionID)
}

func (s *queryService) StatsForUser(ctx context.Context, userID string) (*domain.UserStats, error) {
	if userID == "" {
		return nil, validationError("user id is required")
	}
	sessions, err := s.sessionRepo.ListByAthleteID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return computeStats(sessions), nil
}

func computeStats(sessions []domain.WorkoutSession) *domain.UserStats {
	stats := &domain.UserStats{TotalWorkouts: len(sessions)}
	if len(sessions) == 0 {
		return stats
	}

	var accuracySum, excellent int
	for _, session := range sessions {
		if session.TotalReps > stats.BestReps {
			stats.BestReps = session.TotalReps
		}
		accuracySum += session.Accuracy
		if session.FormScore == excellentFormScore {
			excellent++
		}
	}

	n := float64(len(sessions))
	stats.AvgAccuracy = int(math.Round(float64(accuracySum) / n))
	stats.ExcellentFormPct = int(math.Round(float64(excellent) * 100 / n))
	// flat heuristic: 15 per session, capped at 85 from five sessions on
	if len(sessions) >= 5 {
		stats.Consistency = 85
	} else {
		stats.Consistency = len(sessions) * 15
	}
	return stats
}

func (s *queryService) GetSession(ctx context.Context, sessionID string) (*domain.WorkoutSession, error) {
	id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, validationError("invalid session id %q", sessionID)
	}
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}
