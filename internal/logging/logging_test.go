package logging

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)
	log.now = fixedClock

	log.Info("tunnel %s connected", "wg0")

	assert.Equal(t, "[2025-03-14 09:26:53] [INFO] tunnel wg0 connected\n", buf.String())
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf)
	log.now = fixedClock

	log.Warn("w")
	log.Error("e")
	log.Success("s")

	out := buf.String()
	assert.Contains(t, out, "[WARN] w")
	assert.Contains(t, out, "[ERROR] e")
	assert.Contains(t, out, "[SUCCESS] s")
}

func TestOpenAppends(t *testing.T) {
	path := t.TempDir() + "/sub/monitor.log"

	log, err := Open(path)
	require.NoError(t, err)
	log.console = nil
	log.Info("first")
	require.NoError(t, log.Close())

	log, err = Open(path)
	require.NoError(t, err)
	log.console = nil
	log.Info("second")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}
