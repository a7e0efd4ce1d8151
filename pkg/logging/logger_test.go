package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The log directory is resolved once per process, so it must be pinned
// before any logger is created.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "brain-logging-test-*")
	if err != nil {
		panic(err)
	}
	os.Setenv("BRAIN_LOG_DIR", dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestNewLoggerCreatesSessionFile(t *testing.T) {
	log, err := NewLogger("store")
	require.NoError(t, err)
	defer log.Close()

	require.NotEmpty(t, log.LogPath())
	fileName := filepath.Base(log.LogPath())
	assert.True(t, strings.HasSuffix(fileName, "-brain.log"),
		"expected log file ending in -brain.log, got %q", fileName)

	sessionPart := strings.TrimSuffix(fileName, "-brain.log")
	_, err = uuid.Parse(sessionPart)
	assert.NoError(t, err, "log file name should start with the session id")
}

func TestLoggersShareSessionFile(t *testing.T) {
	first, err := NewLogger("gateway")
	require.NoError(t, err)
	defer first.Close()

	second, err := NewLogger("analyzer")
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, first.LogPath(), second.LogPath())
}

func TestLogLineFormat(t *testing.T) {
	log, err := NewLogger("journal")
	require.NoError(t, err)

	log.Debugf("reading entry %s", "2026-08-29")
	log.Infof("entry written")
	log.Warnf("provider slow")
	log.Errorf("write failed: %v", os.ErrPermission)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(log.LogPath())
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "[journal] [DEBUG] reading entry 2026-08-29")
	assert.Contains(t, content, "[journal] [INFO] entry written")
	assert.Contains(t, content, "[journal] [WARN] provider slow")
	assert.Contains(t, content, "[journal] [ERROR] write failed: permission denied")
}

func TestCloseIsIdempotent(t *testing.T) {
	log, err := NewLogger("cli")
	require.NoError(t, err)

	require.NoError(t, log.Close())
	assert.NoError(t, log.Close())
}

func TestSessionIDStable(t *testing.T) {
	assert.Equal(t, SessionID(), SessionID())

	_, err := uuid.Parse(SessionID())
	assert.NoError(t, err)
}
