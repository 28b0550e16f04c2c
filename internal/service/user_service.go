package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/metrics"
	"alcyxob/workout-telemetry/internal/repository"
	"alcyxob/workout-telemetry/internal/storage"
)

// ProfileInput is a profile write. Email, Role and Update.Name are needed
// only when UpsertProfile has to create the account.
type ProfileInput struct {
	UserID string
	Email  string
	Role   string
	Update domain.ProfileUpdate
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	// UpsertProfile updates the profile, creating it when it does not exist.
	UpsertProfile(ctx context.Context, in ProfileInput) (*domain.User, error)
	// PatchProfile updates an existing profile only.
	PatchProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
	AddSkills(ctx context.Context, userID string, skills []string) (*domain.User, error)
	// ListUsers returns every user, or only those with role when set.
	ListUsers(ctx context.Context, role string) ([]domain.User, error)
}

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
	metrics     *metrics.Manager
}

func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage, metricsManager *metrics.Manager) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		metrics:     metricsManager,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, validationError("userId is required")
	}
	user, err := s.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpsertProfile(ctx context.Context, in ProfileInput) (*domain.User, error) {
	if in.UserID == "" {
		return nil, validationError("userId is required")
	}

	existing, err := s.userRepo.GetByUserID(ctx, in.UserID)
	switch {
	case err == nil:
		if in.Update.IsEmpty() {
			return existing, nil
		}
		return s.PatchProfile(ctx, in.UserID, in.Update)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	email := normalizeEmail(in.Email)
	role, ok := domain.ParseRole(in.Role)
	if in.Update.Name == nil || *in.Update.Name == "" || email == "" || !ok {
		return nil, validationError("name, email and a valid role are required to create a profile")
	}

	user := &domain.User{
		UserID:   in.UserID,
		Name:     *in.Update.Name,
		Email:    email,
		Role:     role,
		District: deref(in.Update.District),
		Bio:      deref(in.Update.Bio),
		Phone:    deref(in.Update.Phone),
		Skills:   cleanSkills(in.Update.Skills),
	}
	user.ProfilePic = uploadProfilePic(ctx, s.fileStorage, s.metrics, in.UserID, deref(in.Update.ProfilePic))

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) PatchProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	if userID == "" {
		return nil, validationError("userId is required")
	}
	if update.IsEmpty() {
		return s.GetProfile(ctx, userID)
	}

	if update.ProfilePic != nil && *update.ProfilePic != "" {
		pic := uploadProfilePic(ctx, s.fileStorage, s.metrics, userID, *update.ProfilePic)
		update.ProfilePic = &pic
	}
	if update.Skills != nil {
		update.Skills = cleanSkills(update.Skills)
	}

	user, err := s.userRepo.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) AddSkills(ctx context.Context, userID string, skills []string) (*domain.User, error) {
	skills = cleanSkills(skills)
	if userID == "" || len(skills) == 0 {
		return nil, validationError("userId and at least one skill are required")
	}

	user, err := s.userRepo.AddSkills(ctx, userID, skills)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, role string) ([]domain.User, error) {
	if role == "" {
		return s.userRepo.List(ctx, "")
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, validationError("unknown role %q", role)
	}
	return s.userRepo.List(ctx, r)
}

// cleanSkills trims entries and drops empty ones and duplicates, keeping order.
func cleanSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if _, ok := seen[skill]; ok {
			continue
		}
		seen[skill] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
