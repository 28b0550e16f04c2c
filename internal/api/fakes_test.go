package api

import (
	"context"
	"io"
	"time"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/service"
	"alcyxob/workout-telemetry/internal/video"
)

// Each fake answers from a function field; a nil field means the call was
// not expected and yields a zero value.

type fakeAuth struct {
	signup     func(service.SignupInput) (*domain.User, string, error)
	login      func(email, password string) (*domain.User, string, error)
	checkEmail func(email string) (*service.EmailCheck, error)
}

func (f *fakeAuth) Signup(_ context.Context, in service.SignupInput) (*domain.User, string, error) {
	return f.signup(in)
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*domain.User, string, error) {
	return f.login(email, password)
}

func (f *fakeAuth) CheckEmail(_ context.Context, email string) (*service.EmailCheck, error) {
	return f.checkEmail(email)
}

func (f *fakeAuth) GetJWTSecret() string { return testSecret }

type fakeUsers struct {
	profiles map[string]*domain.User
	upserted []service.ProfileInput
}

func (f *fakeUsers) GetProfile(_ context.Context, userID string) (*domain.User, error) {
	if u, ok := f.profiles[userID]; ok {
		return u, nil
	}
	return nil, service.ErrUserNotFound
}

func (f *fakeUsers) UpsertProfile(_ context.Context, in service.ProfileInput) (*domain.User, error) {
	f.upserted = append(f.upserted, in)
	u := &domain.User{UserID: in.UserID, Email: in.Email}
	if in.Update.Name != nil {
		u.Name = *in.Update.Name
	}
	return u, nil
}

func (f *fakeUsers) PatchProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	u, err := f.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	return u, nil
}

func (f *fakeUsers) AddSkills(ctx context.Context, userID string, skills []string) (*domain.User, error) {
	u, err := f.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Skills = append(u.Skills, skills...)
	return u, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, role string) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.profiles {
		if role == "" || string(u.Role) == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeSessions struct {
	ingested []service.SessionInput
	reps     [][]service.RepInput
	result   *service.IngestResult
	err      error
	deleted  int64
}

func (f *fakeSessions) Ingest(_ context.Context, in service.SessionInput, reps []service.RepInput) (*service.IngestResult, error) {
	f.ingested = append(f.ingested, in)
	f.reps = append(f.reps, reps)
	return f.result, f.err
}

func (f *fakeSessions) Delete(_ context.Context, sessionID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func (f *fakeSessions) Reconcile(context.Context, time.Duration) (int, error) { return 0, nil }

type fakeQueries struct {
	workouts []service.WorkoutView
	athletes []domain.AthleteSummary
	reps     []domain.RepImage
	stats    *domain.UserStats
	session  *domain.WorkoutSession
	err      error
}

func (f *fakeQueries) ListByAthlete(context.Context, string) ([]service.WorkoutView, error) {
	return f.workouts, f.err
}

func (f *fakeQueries) ListAthletes(context.Context) ([]domain.AthleteSummary, error) {
	return f.athletes, f.err
}

func (f *fakeQueries) RepsForSession(context.Context, string) ([]domain.RepImage, error) {
	return f.reps, f.err
}

func (f *fakeQueries) StatsForUser(context.Context, string) (*domain.UserStats, error) {
	return f.stats, f.err
}

func (f *fakeQueries) GetSession(context.Context, string) (*domain.WorkoutSession, error) {
	if f.session == nil {
		return nil, service.ErrSessionNotFound
	}
	return f.session, nil
}

type fakeConnections struct {
	sendErr error
	status  *service.ConnectionStatusView
}

func (f *fakeConnections) SendRequest(_ context.Context, from, to string) (*domain.Connection, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &domain.Connection{FromUserID: from, ToUserID: to, Status: domain.ConnectionPending}, nil
}

func (f *fakeConnections) Accept(context.Context, string) (*domain.Connection, error) {
	return &domain.Connection{Status: domain.ConnectionAccepted}, nil
}

func (f *fakeConnections) Reject(context.Context, string) (*domain.Connection, error) {
	return nil, service.ErrConnectionNotFound
}

func (f *fakeConnections) Status(context.Context, string, string) (*service.ConnectionStatusView, error) {
	return f.status, nil
}

func (f *fakeConnections) Discover(_ context.Context, userID string) ([]domain.User, error) {
	if userID == "" {
		return nil, service.ErrValidation
	}
	return []domain.User{{UserID: "coach_1"}}, nil
}

func (f *fakeConnections) PendingReceived(context.Context, string) ([]service.ConnectionView, error) {
	return []service.ConnectionView{}, nil
}

func (f *fakeConnections) SentRequests(context.Context, string) ([]service.ConnectionView, error) {
	return []service.ConnectionView{}, nil
}

func (f *fakeConnections) Connections(context.Context, string) ([]service.ConnectionView, error) {
	return []service.ConnectionView{}, nil
}

type fakeAdmin struct {
	health *service.HealthReport
}

func (f *fakeAdmin) Health(context.Context) *service.HealthReport { return f.health }

func (f *fakeAdmin) Stats(context.Context) (*service.CollectionStats, error) {
	return &service.CollectionStats{Users: 3, Sessions: 2}, nil
}

func (f *fakeAdmin) Users(context.Context) ([]domain.User, error) { return []domain.User{}, nil }

func (f *fakeAdmin) Sessions(context.Context, int64) ([]domain.WorkoutSession, error) {
	return []domain.WorkoutSession{}, nil
}

func (f *fakeAdmin) Reps(context.Context, string, int64) ([]domain.RepImage, error) {
	return []domain.RepImage{}, nil
}

func (f *fakeAdmin) Athletes(context.Context) ([]domain.AthleteSummary, error) {
	return []domain.AthleteSummary{}, nil
}

type fakeVideo struct {
	activity string
	body     string
	result   *video.Result
	err      error
	files    map[string]string
}

func (f *fakeVideo) Process(_ context.Context, activity string, upload io.Reader, _ string) (*video.Result, error) {
	f.activity = activity
	b, _ := io.ReadAll(upload)
	f.body = string(b)
	return f.result, f.err
}

func (f *fakeVideo) Results(string) (*video.Table, error) {
	return nil, video.ErrOutputNotFound
}

func (f *fakeVideo) Frames(string) ([]string, error) {
	return []string{"frame_0001.jpg"}, nil
}

func (f *fakeVideo) FramePath(outputID, file string) (string, error) {
	if p, ok := f.files[outputID+"/"+file]; ok {
		return p, nil
	}
	return "", video.ErrOutputNotFound
}

func (f *fakeVideo) VideoPath(outputID, file string) (string, error) {
	return f.FramePath(outputID, file)
}

type fakeLive struct{}

func (fakeLive) Start(ctx context.Context, activity string) (*video.LiveResult, error) {
	if activity != "Push-ups" {
		return nil, video.ErrUnsupportedActivity
	}
	return &video.LiveResult{Activity: activity, Rows: []map[string]interface{}{{"rep": 1}}, Simulated: true}, nil
}
