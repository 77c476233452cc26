package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppLogsToGivenWriter(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "bot.db"))
	envFileFlag = filepath.Join(t.TempDir(), "missing.env")

	var logs bytes.Buffer
	a, err := newApp(context.Background(), false, &logs)
	require.NoError(t, err)
	defer a.Close()

	assert.Contains(t, logs.String(), "storage ready")
	assert.Nil(t, a.messages, "no transport without withTransport")
}
