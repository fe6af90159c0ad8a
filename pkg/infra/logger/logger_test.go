package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_StdoutOnly(t *testing.T) {
	log, closeFn, err := NewLogger(Options{Level: "debug"})
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.Equal(t, os.Stdout, log.Out)
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, closeFn, err := NewLogger(Options{Level: "chatty"})
	require.NoError(t, err)
	defer closeFn()

	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewLogger_RejectsEscapingPath(t *testing.T) {
	_, _, err := NewLogger(Options{File: "../outside.log"})
	assert.Error(t, err)
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	log, closeFn, err := NewLogger(Options{Level: "info", File: "test.log"})
	require.NoError(t, err)

	log.WithField("topic", "event").Info("verdict composed")
	time.Sleep(20 * time.Millisecond)
	closeFn()

	data, err := os.ReadFile(filepath.Join(dir, logsDir, "test.log"))
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"msg":"verdict composed"`)
	assert.Contains(t, line, `"topic":"event"`)
}
