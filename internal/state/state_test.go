package state

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *logging.Logger {
	return logging.New(io.Discard)
}

func TestCooldownActiveAfterArm(t *testing.T) {
	g := NewCooldownGate(t.TempDir(), 30*time.Minute, discard())

	assert.False(t, g.Active(), "no marker means no cooldown")

	g.Arm()
	assert.True(t, g.Active())
}

func TestCooldownExpires(t *testing.T) {
	g := NewCooldownGate(t.TempDir(), 30*time.Minute, discard())
	g.Arm()

	// jump the clock past the window
	g.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	assert.False(t, g.Active())
}

func TestCooldownMalformedMarkerDiscarded(t *testing.T) {
	dir := t.TempDir()
	g := NewCooldownGate(dir, 30*time.Minute, discard())
	require.NoError(t, os.WriteFile(g.path, []byte("not a timestamp"), 0o644))

	assert.False(t, g.Active())

	_, err := os.Stat(g.path)
	assert.True(t, os.IsNotExist(err), "malformed marker must be removed")
}

func TestStoppedStoreRoundTrip(t *testing.T) {
	s := NewStoppedStore(t.TempDir(), discard())

	_, found := s.Load()
	assert.False(t, found)

	require.NoError(t, s.Save([]string{"sonarr", "qbittorrent"}))

	names, found := s.Load()
	assert.True(t, found)
	assert.Equal(t, []string{"sonarr", "qbittorrent"}, names)

	s.Clear()
	_, found = s.Load()
	assert.False(t, found)
}

func TestStoppedStoreCorruptRecord(t *testing.T) {
	s := NewStoppedStore(t.TempDir(), discard())
	require.NoError(t, os.WriteFile(s.path, []byte("{{nope"), 0o644))

	_, found := s.Load()
	assert.False(t, found)

	_, err := os.Stat(s.path)
	assert.True(t, os.IsNotExist(err))
}

func TestStoppedStoreClearAbsentIsNoop(t *testing.T) {
	s := NewStoppedStore(t.TempDir(), discard())
	s.Clear()
}

func TestRunLockAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLock(dir, discard())

	require.True(t, l.Acquire())

	// a second invocation against the same live PID must be refused
	other := NewRunLock(dir, discard())
	assert.False(t, other.Acquire())

	l.Release()
	assert.True(t, other.Acquire())
	other.Release()
}

func TestRunLockStaleLockReplaced(t *testing.T) {
	dir := t.TempDir()
	l := NewRunLock(dir, discard())
	// PID 0 can never be a live invocation
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.lock"), []byte("0\n"), 0o644))

	assert.True(t, l.Acquire())
	l.Release()
}
