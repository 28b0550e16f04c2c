package service

import (
	"context"
	"testing"

	"alcyxob/workout-telemetry/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService(t *testing.T) {
	ctx := context.Background()
	sessions := newSessionRepoMock()
	reps := newRepImageRepoMock()
	conns := newConnectionRepoMock()
	ingest := NewSessionService(sessions, reps, nil, nil, nil)

	res, err := ingest.Ingest(ctx, squatsSession(), threeReps())
	require.NoError(t, err)
	_, err = conns.Create(ctx, &domain.Connection{FromUserID: asha, ToUserID: kiran})
	require.NoError(t, err)

	svc := NewAdminService(pingerMock{}, seededUsers(), sessions, reps, conns)

	health := svc.Health(ctx)
	assert.Equal(t, "connected", health.Database)
	assert.Equal(t, CollectionStats{Users: 3, Sessions: 1, RepImages: 3, Connections: 1}, health.Counts)

	users, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	all, err := svc.Sessions(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	sessionReps, err := svc.Reps(ctx, res.SessionID, 0)
	require.NoError(t, err)
	assert.Len(t, sessionReps, 3)

	latest, err := svc.Reps(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, latest, 2)

	athletes, err := svc.Athletes(ctx)
	require.NoError(t, err)
	require.Len(t, athletes, 1)
	assert.Equal(t, 1, athletes[0].TotalWorkouts)
}

func TestAdminService_HealthDisconnected(t *testing.T) {
	svc := NewAdminService(pingerMock{err: errStoreDown}, seededUsers(), newSessionRepoMock(), newRepImageRepoMock(), newConnectionRepoMock())

	health := svc.Health(context.Background())
	assert.Equal(t, "disconnected", health.Database)
	assert.Equal(t, errStoreDown.Error(), health.Error)
}
