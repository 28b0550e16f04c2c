package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/metrics"
	"alcyxob/workout-telemetry/internal/repository"
	"alcyxob/workout-telemetry/internal/storage"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "workout-telemetry"

type SignupInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	District   string
	ProfilePic string
}

// EmailCheck is the answer of CheckEmail. Name and Role are only set when
// the account exists.
type EmailCheck struct {
	Exists bool        `json:"exists"`
	Name   string      `json:"name,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (user *domain.User, token string, err error)
	Login(ctx context.Context, email, password string) (user *domain.User, token string, err error)
	CheckEmail(ctx context.Context, email string) (*EmailCheck, error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	fileStorage   storage.FileStorage
	metrics       *metrics.Manager
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	fileStorage storage.FileStorage,
	metricsManager *metrics.Manager,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		fileStorage:   fileStorage,
		metrics:       metricsManager,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Signup registers a new account and returns it with a fresh token.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" || in.Password == "" || in.Role == "" {
		return nil, "", validationError("name, email, password and role are required")
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, "", validationError("unknown role %q", in.Role)
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		UserID:       newUserID(role),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		District:     strings.TrimSpace(in.District),
	}
	user.ProfilePic = uploadProfilePic(ctx, s.fileStorage, s.metrics, user.UserID, in.ProfilePic)

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		// the unique email index catches a concurrent signup
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", err
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", ErrTokenGeneration
	}

	log.Infof("user [%s] signed up as %s", user.UserID, user.Role)
	user.PasswordHash = ""
	return user, token, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", validationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	// constant time comparison against the salted hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, "", ErrTokenGeneration
	}

	user.PasswordHash = ""
	return user, token, nil
}

// CheckEmail reports whether an account uses email.
func (s *authService) CheckEmail(ctx context.Context, email string) (*EmailCheck, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, validationError("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &EmailCheck{Exists: false}, nil
		}
		return nil, err
	}
	return &EmailCheck{Exists: true, Name: user.Name, Role: user.Role}, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &jwtClaims{
		UserID: user.UserID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// newUserID returns "<lowercase role>_<12 hex chars>".
func newUserID(role domain.Role) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToLower(string(role)) + "_" + hex[:12]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// uploadProfilePic stores an inline picture on the media host, keeping it
// inline when the upload fails.
func uploadProfilePic(ctx context.Context, fs storage.FileStorage, m *metrics.Manager, userID, pic string) string {
	stored := storage.StoreOrInline(ctx, fs, storage.KindImage, pic, "profiles", userID)
	if stored.Err != nil {
		log.Warnf("profile picture upload for [%s] failed, storing inline: %s", userID, stored.Err)
		m.UploadFallback(string(storage.KindImage))
	}
	return stored.Value
}
