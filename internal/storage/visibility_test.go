package storage_test

import (
	"context"
	"errors"
	"testing"

	"alcyxob/workout-telemetry/internal/storage"
	"alcyxob/workout-telemetry/internal/storage/storagemock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestFixVisibility_ContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := storagemock.NewMockFileStorage(ctrl)
	ctx := context.Background()

	fs.EXPECT().ListObjects(gomock.Any(), "sessions/").Return([]string{"sessions/a.jpg", "sessions/b.jpg", "sessions/c.pdf"}, nil)
	fs.EXPECT().MakePublic(gomock.Any(), "sessions/a.jpg").Return(nil)
	fs.EXPECT().MakePublic(gomock.Any(), "sessions/b.jpg").Return(errors.New("access denied"))
	fs.EXPECT().MakePublic(gomock.Any(), "sessions/c.pdf").Return(nil)

	report, err := storage.FixVisibility(ctx, fs, "sessions/")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, map[string]string{"sessions/b.jpg": "access denied"}, report.Failures)
}

func TestFixVisibility_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := storagemock.NewMockFileStorage(ctrl)
	ctx := context.Background()

	fs.EXPECT().ListObjects(gomock.Any(), "profiles/").Return([]string{"profiles/u1.png"}, nil).Times(2)
	fs.EXPECT().MakePublic(gomock.Any(), "profiles/u1.png").Return(nil).Times(2)

	first, err := storage.FixVisibility(ctx, fs, "profiles/")
	require.NoError(t, err)
	second, err := storage.FixVisibility(ctx, fs, "profiles/")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, storage.FixReport{Total: 1, Succeeded: 1}, second)
}

func TestFixVisibility_ListError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := storagemock.NewMockFileStorage(ctrl)

	fs.EXPECT().ListObjects(gomock.Any(), "x").Return(nil, errors.New("boom"))

	_, err := storage.FixVisibility(context.Background(), fs, "x")
	require.Error(t, err)
}
