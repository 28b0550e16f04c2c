package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/metrics"
	"alcyxob/workout-telemetry/internal/storage"
	"alcyxob/workout-telemetry/internal/storage/storagemock"

	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "test-secret"

var userIDPattern = regexp.MustCompile(`^athlete_[0-9a-f]{12}$`)

func newAuthService(users *userRepoMock, fs storage.FileStorage, m *metrics.Manager) AuthService {
	return NewAuthService(users, fs, m, testSecret, time.Hour)
}

func TestSignupAndLogin(t *testing.T) {
	users := newUserRepoMock()
	svc := newAuthService(users, nil, nil)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, SignupInput{
		Name:     "Asha",
		Email:    " Asha@Example.com ",
		Password: "hunter22",
		Role:     "athlete",
		District: "Pune",
	})
	require.NoError(t, err)
	assert.Regexp(t, userIDPattern, user.UserID)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.Equal(t, domain.RoleAthlete, user.Role)
	assert.Empty(t, user.PasswordHash)
	assert.NotEmpty(t, token)

	stored, err := users.GetByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, user.UserID, claims.UserID)
	assert.Equal(t, domain.RoleAthlete, claims.Role)

	loggedIn, loginToken, err := svc.Login(ctx, "ASHA@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.UserID, loggedIn.UserID)
	assert.Empty(t, loggedIn.PasswordHash)
	assert.NotEmpty(t, loginToken)

	_, _, err = svc.Login(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthentication)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	users := newUserRepoMock()
	svc := newAuthService(users, nil, nil)
	ctx := context.Background()

	first, _, err := svc.Signup(ctx, SignupInput{Name: "First", Email: "dup@example.com", Password: "one", Role: "COACH"})
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, SignupInput{Name: "Second", Email: "dup@example.com", Password: "two", Role: "ATHLETE"})
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := users.GetByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.UserID, stored.UserID)
	assert.Equal(t, "First", stored.Name)
	assert.Equal(t, domain.RoleCoach, stored.Role)

	_, _, err = svc.Login(ctx, "dup@example.com", "one")
	assert.NoError(t, err)
}

func TestSignup_Validation(t *testing.T) {
	svc := newAuthService(newUserRepoMock(), nil, nil)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, SignupInput{Email: "a@b.c", Password: "x", Role: "ATHLETE"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Signup(ctx, SignupInput{Name: "A", Email: "a@b.c", Password: "x", Role: "trainer"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignup_ProfilePicture(t *testing.T) {
	ctx := context.Background()

	t.Run("uploaded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := storagemock.NewMockFileStorage(ctrl)
		fs.EXPECT().
			Upload(gomock.Any(), storage.KindImage, inlineImage, "profiles", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ storage.Kind, _, folder, publicID string) (string, error) {
				return "https://cdn.example.com/" + folder + "/" + publicID + ".jpg", nil
			})

		user, _, err := newAuthService(newUserRepoMock(), fs, nil).Signup(ctx, SignupInput{
			Name: "P", Email: "p@example.com", Password: "pw", Role: "ATHLETE", ProfilePic: inlineImage,
		})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/profiles/"+user.UserID+".jpg", user.ProfilePic)
	})

	t.Run("fallback inline", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		fs := storagemock.NewMockFileStorage(ctrl)
		fs.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("timeout"))
		m := metrics.NewTestManager()

		user, _, err := newAuthService(newUserRepoMock(), fs, m).Signup(ctx, SignupInput{
			Name: "P", Email: "p@example.com", Password: "pw", Role: "ATHLETE", ProfilePic: inlineImage,
		})
		require.NoError(t, err)
		assert.Equal(t, inlineImage, user.ProfilePic)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterUploadFallbacks.WithLabelValues("image")))
	})
}

func TestCheckEmail(t *testing.T) {
	users := newUserRepoMock(domain.User{UserID: "coach_aaaaaaaaaaaa", Name: "Coach K", Email: "k@example.com", Role: domain.RoleCoach})
	svc := newAuthService(users, nil, nil)
	ctx := context.Background()

	check, err := svc.CheckEmail(ctx, "K@example.com")
	require.NoError(t, err)
	assert.Equal(t, &EmailCheck{Exists: true, Name: "Coach K", Role: domain.RoleCoach}, check)

	check, err = svc.CheckEmail(ctx, "none@example.com")
	require.NoError(t, err)
	assert.Equal(t, &EmailCheck{Exists: false}, check)

	_, err = svc.CheckEmail(ctx, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewAuthService_PanicsWithoutSecret(t *testing.T) {
	assert.Panics(t, func() {
		NewAuthService(newUserRepoMock(), nil, nil, "", time.Hour)
	})
}
