package main

import (
	"context"
	"errors"
	"testing"

	"agri-inventory/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushOnly struct {
	app.ApplicationService
	err error
}

func (f flushOnly) Flush(context.Context) error { return f.err }

func TestFlushLogsUnsavedChanges(t *testing.T) {
	logger, hook := test.NewNullLogger()

	flush(flushOnly{}, logger)
	assert.Empty(t, hook.AllEntries())

	flush(flushOnly{err: errors.New("disk full")}, logger)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "unsaved changes could not be written", entry.Message)
	assert.EqualError(t, entry.Data[logrus.ErrorKey].(error), "disk full")
}
