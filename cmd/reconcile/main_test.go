package main

import (
	"context"
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	removed int
	err     error
}

func (f fakeReconciler) Reconcile(context.Context, time.Duration) (int, error) {
	return f.removed, f.err
}

func TestReconcile_PartialFailureReportsCountAndFails(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	err := reconcile(context.Background(), fakeReconciler{removed: 2, err: errors.New("delete reps: timeout")}, time.Minute)
	require.Error(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.ErrorLevel, entry.Level)
	assert.Contains(t, entry.Message, "2 pending sessions rolled back")
	assert.Contains(t, entry.Message, "delete reps: timeout")
}

func TestReconcile_Success(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	require.NoError(t, reconcile(context.Background(), fakeReconciler{removed: 5}, time.Minute))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.InfoLevel, entry.Level)
	assert.Contains(t, entry.Message, "5 pending sessions rolled back")
}
