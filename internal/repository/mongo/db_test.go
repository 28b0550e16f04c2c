package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"alcyxob/workout-telemetry/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_NotConnected(t *testing.T) {
	store := NewStore("mongodb://localhost:1", "test")

	db, err := store.Database()
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, store.Ping(context.Background()), ErrNotConnected)
	assert.NoError(t, store.Close(context.Background()))
	assert.Panics(t, func() { store.MustDatabase() })
}

func TestIsIndexConflict(t *testing.T) {
	assert.True(t, isIndexConflict(mongo.CommandError{Code: 85, Message: "IndexOptionsConflict"}))
	assert.True(t, isIndexConflict(mongo.CommandError{Code: 86, Message: "IndexKeySpecsConflict"}))
	assert.True(t, isIndexConflict(fmt.Errorf("wrapped: %w", mongo.CommandError{Code: 68})))
	assert.False(t, isIndexConflict(mongo.CommandError{Code: 13, Message: "Unauthorized"}))
	assert.False(t, isIndexConflict(errors.New("network down")))
}

func TestProfileSet(t *testing.T) {
	name := "Asha"
	pic := "https://cdn/p.png"
	set := profileSet(domain.ProfileUpdate{Name: &name, ProfilePic: &pic, Skills: []string{"sprint"}})

	assert.Equal(t, bson.M{
		"name":       "Asha",
		"profilePic": "https://cdn/p.png",
		"skills":     []string{"sprint"},
	}, set)
	assert.Empty(t, profileSet(domain.ProfileUpdate{}))
}

func TestWithStatus(t *testing.T) {
	assert.Equal(t, bson.M{"toUserId": "u"}, withStatus(bson.M{"toUserId": "u"}, ""))
	assert.Equal(t,
		bson.M{"toUserId": "u", "status": domain.ConnectionPending},
		withStatus(bson.M{"toUserId": "u"}, domain.ConnectionPending),
	)
}

func TestIndexModels(t *testing.T) {
	require.Len(t, repImageIndexes(), 1)
	opts := repImageIndexes()[0].Options
	require.NotNil(t, opts)
	require.NotNil(t, opts.Unique)
	assert.True(t, *opts.Unique)

	for _, m := range userIndexes() {
		require.NotNil(t, m.Keys)
	}
	require.NotEmpty(t, sessionIndexes())
	require.NotEmpty(t, connectionIndexes())
}
