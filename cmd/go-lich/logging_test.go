package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lich/internal/config"
)

func TestTargetFor(t *testing.T) {
	tests := []struct {
		name    string
		command string
		debug   bool
		want    logTarget
	}{
		{"Server starts a fresh mirrored log", cmdServe, false, logTarget{console: true, fresh: true}},
		{"One-shot appends quietly", "day", false, logTarget{}},
		{"Debug mirrors one-shot logs", "check", true, logTarget{console: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetFor(tt.command, tt.debug))
		})
	}
}

// A one-shot command running next to the server must neither empty the
// shared log nor leave a hole in it when the server writes again.
func TestLogFile_SharedBetweenServerAndOneShot(t *testing.T) {
	isolateEnv(t)

	server, err := openLogFile(true)
	require.NoError(t, err)
	defer func() { _ = server.Close() }()

	_, err = server.WriteString("server-1\n")
	require.NoError(t, err)

	oneShot, err := openLogFile(false)
	require.NoError(t, err)
	_, err = oneShot.WriteString("day\n")
	require.NoError(t, err)
	require.NoError(t, oneShot.Close())

	_, err = server.WriteString("server-2\n")
	require.NoError(t, err)

	path, err := getLogFilePath()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "server-1\nday\nserver-2\n", string(data))
	assert.NotContains(t, string(data), "\x00")
}

func TestLogFile_ServerRestartTruncates(t *testing.T) {
	isolateEnv(t)

	path, err := getLogFilePath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), config.FilePermUserRW))

	f, err := openLogFile(true)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestSetupLogging_OneShotKeepsExistingLog(t *testing.T) {
	isolateEnv(t)
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path, err := getLogFilePath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{\"msg\":\"server\"}\n"), config.FilePermUserRW))

	closer := setupLogging(false, targetFor("day", false))
	require.NotNil(t, closer)
	slog.Info("one-shot")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"msg\":\"server\"")
	assert.Contains(t, string(data), "\"msg\":\"one-shot\"")
}
