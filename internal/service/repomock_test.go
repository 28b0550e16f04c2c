package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories with the same ordering and uniqueness rules as the
// mongo implementations.

type userRepoMock struct {
	mu    sync.Mutex
	users []domain.User
}

func newUserRepoMock(users ...domain.User) *userRepoMock {
	return &userRepoMock{users: users}
}

func (r *userRepoMock) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.UserID == user.UserID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users = append(r.users, *user)
	return user.ID, nil
}

func (r *userRepoMock) find(match func(u domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if match(r.users[i]) {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepoMock) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.UserID == userID })
}

func (r *userRepoMock) filter(match func(u domain.User) bool) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.users {
		if match(u) {
			out = append(out, u)
		}
	}
	return out
}

func (r *userRepoMock) GetByUserIDs(_ context.Context, userIDs []string) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return slices.Contains(userIDs, u.UserID) }), nil
}

func (r *userRepoMock) List(_ context.Context, role domain.Role) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return role == "" || u.Role == role }), nil
}

func (r *userRepoMock) ListExcluding(_ context.Context, userIDs []string) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return !slices.Contains(userIDs, u.UserID) }), nil
}

func (r *userRepoMock) Update(_ context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		u := &r.users[i]
		if u.UserID != userID {
			continue
		}
		if update.Name != nil {
			u.Name = *update.Name
		}
		if update.District != nil {
			u.District = *update.District
		}
		if update.ProfilePic != nil {
			u.ProfilePic = *update.ProfilePic
		}
		if update.Bio != nil {
			u.Bio = *update.Bio
		}
		if update.Phone != nil {
			u.Phone = *update.Phone
		}
		if update.Skills != nil {
			u.Skills = update.Skills
		}
		out := *u
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (r *userRepoMock) AddSkills(_ context.Context, userID string, skills []string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		u := &r.users[i]
		if u.UserID != userID {
			continue
		}
		for _, s := range skills {
			if !slices.Contains(u.Skills, s) {
				u.Skills = append(u.Skills, s)
			}
		}
		out := *u
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (r *userRepoMock) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type sessionRepoMock struct {
	mu       sync.Mutex
	sessions []domain.WorkoutSession
	// createErr fails the next Create
	createErr error
}

func newSessionRepoMock() *sessionRepoMock {
	return &sessionRepoMock{}
}

func (r *sessionRepoMock) Create(_ context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	session.ID = primitive.NewObjectID()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	r.sessions = append(r.sessions, *session)
	return session.ID, nil
}

func (r *sessionRepoMock) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *sessionRepoMock) list(match func(s domain.WorkoutSession) bool, limit int64) []domain.WorkoutSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.WorkoutSession{}
	for _, s := range r.sessions {
		if match(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func visible(s domain.WorkoutSession) bool {
	return s.IngestStatus != domain.IngestPending
}

func (r *sessionRepoMock) ListByAthleteName(_ context.Context, name string) ([]domain.WorkoutSession, error) {
	return r.list(func(s domain.WorkoutSession) bool { return visible(s) && s.AthleteName == name }, 0), nil
}

func (r *sessionRepoMock) ListByAthleteID(_ context.Context, athleteID string) ([]domain.WorkoutSession, error) {
	return r.list(func(s domain.WorkoutSession) bool { return visible(s) && s.AthleteID == athleteID }, 0), nil
}

func (r *sessionRepoMock) List(_ context.Context, limit int64) ([]domain.WorkoutSession, error) {
	return r.list(func(domain.WorkoutSession) bool { return true }, limit), nil
}

func (r *sessionRepoMock) AthleteSummaries(context.Context) ([]domain.AthleteSummary, error) {
	byName := map[string]*domain.AthleteSummary{}
	var order []string
	for _, s := range r.list(visible, 0) {
		sum, ok := byName[s.AthleteName]
		if !ok {
			sum = &domain.AthleteSummary{AthleteName: s.AthleteName, ProfilePic: s.AthleteProfilePic}
			byName[s.AthleteName] = sum
			order = append(order, s.AthleteName)
		}
		if sum.ProfilePic == "" {
			sum.ProfilePic = s.AthleteProfilePic
		}
		sum.TotalWorkouts++
		if s.Timestamp.After(sum.LastWorkout) {
			sum.LastWorkout = s.Timestamp
		}
	}
	out := make([]domain.AthleteSummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastWorkout.After(out[j].LastWorkout) })
	return out, nil
}

func (r *sessionRepoMock) SetIngestStatus(_ context.Context, id primitive.ObjectID, status domain.IngestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			r.sessions[i].IngestStatus = status
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *sessionRepoMock) ListStalePending(_ context.Context, cutoff time.Time) ([]domain.WorkoutSession, error) {
	return r.list(func(s domain.WorkoutSession) bool {
		return s.IngestStatus == domain.IngestPending && s.CreatedAt.Before(cutoff)
	}, 0), nil
}

func (r *sessionRepoMock) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *sessionRepoMock) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sessions)), nil
}

// setCreatedAt backdates a stored session.
func (r *sessionRepoMock) setCreatedAt(id primitive.ObjectID, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.sessions {
		if r.sessions[i].ID == id {
			r.sessions[i].CreatedAt = at
		}
	}
}

type repImageRepoMock struct {
	mu   sync.Mutex
	reps []domain.RepImage
	// insertErr fails InsertMany without writing anything
	insertErr error
	// deleteErrFor fails DeleteBySession for the listed session ids
	deleteErrFor map[string]error
}

func newRepImageRepoMock() *repImageRepoMock {
	return &repImageRepoMock{}
}

func (r *repImageRepoMock) InsertMany(_ context.Context, reps []domain.RepImage) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	skipped := 0
	for _, rep := range reps {
		dup := slices.ContainsFunc(r.reps, func(existing domain.RepImage) bool {
			return existing.SessionID == rep.SessionID && existing.RepNumber == rep.RepNumber
		})
		if dup {
			skipped++
			continue
		}
		rep.ID = primitive.NewObjectID()
		r.reps = append(r.reps, rep)
	}
	if skipped > 0 {
		return len(reps) - skipped, fmt.Errorf("%w: %d rep(s) skipped", repository.ErrDuplicate, skipped)
	}
	return len(reps), nil
}

func (r *repImageRepoMock) list(match func(domain.RepImage) bool, limit int64) []domain.RepImage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.RepImage{}
	for _, rep := range r.reps {
		if match(rep) {
			out = append(out, rep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SessionID != out[j].SessionID {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].RepNumber < out[j].RepNumber
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out
}

func (r *repImageRepoMock) ListBySession(_ context.Context, sessionID string) ([]domain.RepImage, error) {
	return r.list(func(rep domain.RepImage) bool { return rep.SessionID == sessionID }, 0), nil
}

func (r *repImageRepoMock) ListBySessions(_ context.Context, sessionIDs []string) ([]domain.RepImage, error) {
	return r.list(func(rep domain.RepImage) bool { return slices.Contains(sessionIDs, rep.SessionID) }, 0), nil
}

func (r *repImageRepoMock) List(_ context.Context, limit int64) ([]domain.RepImage, error) {
	return r.list(func(domain.RepImage) bool { return true }, limit), nil
}

func (r *repImageRepoMock) DeleteBySession(_ context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErrFor[sessionID]; err != nil {
		return 0, err
	}
	kept := r.reps[:0]
	var removed int64
	for _, rep := range r.reps {
		if rep.SessionID == sessionID {
			removed++
			continue
		}
		kept = append(kept, rep)
	}
	r.reps = kept
	return removed, nil
}

func (r *repImageRepoMock) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.reps)), nil
}

type connectionRepoMock struct {
	mu    sync.Mutex
	conns []domain.Connection
}

func newConnectionRepoMock() *connectionRepoMock {
	return &connectionRepoMock{}
}

func (r *connectionRepoMock) Create(_ context.Context, conn *domain.Connection) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := domain.PairKey(conn.FromUserID, conn.ToUserID)
	for _, c := range r.conns {
		if c.PairKey == key {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	conn.ID = primitive.NewObjectID()
	conn.PairKey = key
	r.conns = append(r.conns, *conn)
	return conn.ID, nil
}

func (r *connectionRepoMock) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *connectionRepoMock) FindBetween(_ context.Context, userA, userB string) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := domain.PairKey(userA, userB)
	for _, c := range r.conns {
		if c.PairKey == key {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *connectionRepoMock) SetStatus(_ context.Context, id primitive.ObjectID, status domain.ConnectionStatus, at time.Time) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.conns {
		c := &r.conns[i]
		if c.ID != id {
			continue
		}
		c.Status = status
		switch status {
		case domain.ConnectionAccepted:
			c.AcceptedAt = &at
		case domain.ConnectionRejected:
			c.RejectedAt = &at
		}
		out := *c
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (r *connectionRepoMock) list(match func(domain.Connection) bool, status domain.ConnectionStatus) []domain.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Connection{}
	for _, c := range r.conns {
		if match(c) && (status == "" || c.Status == status) {
			out = append(out, c)
		}
	}
	return out
}

func (r *connectionRepoMock) ListReceived(_ context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error) {
	return r.list(func(c domain.Connection) bool { return c.ToUserID == userID }, status), nil
}

func (r *connectionRepoMock) ListSent(_ context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error) {
	return r.list(func(c domain.Connection) bool { return c.FromUserID == userID }, status), nil
}

func (r *connectionRepoMock) ListForUser(_ context.Context, userID string, status domain.ConnectionStatus) ([]domain.Connection, error) {
	return r.list(func(c domain.Connection) bool { return c.FromUserID == userID || c.ToUserID == userID }, status), nil
}

func (r *connectionRepoMock) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.conns)), nil
}

type pingerMock struct {
	err error
}

func (p pingerMock) Ping(context.Context) error {
	return p.err
}

var errStoreDown = errors.New("server selection timeout")
