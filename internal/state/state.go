// Package state owns the records that survive across invocations: the
// cooldown marker, the stopped-service record, and the run lock. All of
// them live in the configured state directory and are best-effort; a
// corrupt record is discarded with a warning, never fatal.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
)

const (
	cooldownFile = "cooldown"
	stoppedFile  = "stopped-services.yml"
	lockFile     = "run.lock"
)

// CooldownGate throttles recovery attempts: after a failed or degraded
// attempt the gate stays active for the configured window.
type CooldownGate struct {
	path   string
	window time.Duration
	log    *logging.Logger
	now    func() time.Time
}

// NewCooldownGate returns a gate persisting its marker under stateDir.
func NewCooldownGate(stateDir string, window time.Duration, log *logging.Logger) *CooldownGate {
	return &CooldownGate{
		path:   filepath.Join(stateDir, cooldownFile),
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Active reports whether the last failed attempt is still inside the
// cooldown window. A missing or malformed marker never blocks the run.
func (g *CooldownGate) Active() bool {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if !os.IsNotExist(err) {
			g.log.Warn("reading cooldown marker: %v", err)
		}
		return false
	}

	armed, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		g.log.Warn("discarding malformed cooldown marker: %v", err)
		_ = os.Remove(g.path)
		return false
	}

	remaining := armed.Add(g.window).Sub(g.now())
	if remaining > 0 {
		g.log.Info("cooldown active for another %s (last attempt %s)", remaining.Round(time.Second), armed.Format(time.RFC3339))
		return true
	}
	return false
}

// Arm records the current time as the last failed attempt. Only the
// orchestrator's failure and degraded exits call this; a successful
// recovery must never throttle the next healthy check.
func (g *CooldownGate) Arm() {
	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		g.log.Error("creating state directory: %v", err)
		return
	}
	stamp := g.now().Format(time.RFC3339)
	if err := os.WriteFile(g.path, []byte(stamp+"\n"), 0o644); err != nil {
		g.log.Error("writing cooldown marker: %v", err)
		return
	}
	g.log.Info("cooldown armed until %s", g.now().Add(g.window).Format(time.RFC3339))
}

// StoppedStore persists the set of services this agent paused, so a
// later invocation can resume them even if this run dies first.
type StoppedStore struct {
	path string
	log  *logging.Logger
}

// NewStoppedStore returns a store writing under stateDir.
func NewStoppedStore(stateDir string, log *logging.Logger) *StoppedStore {
	return &StoppedStore{path: filepath.Join(stateDir, stoppedFile), log: log}
}

// Load reads the record. found is false when no record exists; a
// malformed record is removed and reported as absent.
func (s *StoppedStore) Load() (names []string, found bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("reading stopped-service record: %v", err)
		}
		return nil, false
	}

	if err := yaml.Unmarshal(data, &names); err != nil {
		s.log.Warn("discarding corrupt stopped-service record: %v", err)
		_ = os.Remove(s.path)
		return nil, false
	}
	return names, true
}

// Save overwrites the record with the given service names.
func (s *StoppedStore) Save(names []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(names)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Clear removes the record. Removing an absent record is a no-op.
func (s *StoppedStore) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("removing stopped-service record: %v", err)
	}
}

// RunLock serializes invocations: the external scheduler can fire a new
// run while a slow recovery is still polling, and overlapping runs
// would race on the persisted records.
type RunLock struct {
	path string
	log  *logging.Logger
}

// NewRunLock returns a lock stored under stateDir.
func NewRunLock(stateDir string, log *logging.Logger) *RunLock {
	return &RunLock{path: filepath.Join(stateDir, lockFile), log: log}
}

// Acquire takes the lock for this process. A leftover lock whose
// recorded PID is no longer alive is treated as stale and replaced.
func (l *RunLock) Acquire() bool {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		l.log.Error("creating state directory: %v", err)
		return false
	}

	if l.tryCreate() {
		return true
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err == nil && processAlive(pid) {
		l.log.Warn("another invocation is running (pid %d)", pid)
		return false
	}

	l.log.Warn("removing stale run lock (pid %s)", strings.TrimSpace(string(data)))
	_ = os.Remove(l.path)
	return l.tryCreate()
}

func (l *RunLock) tryCreate() bool {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if !os.IsExist(err) {
			l.log.Error("creating run lock: %v", err)
		}
		return false
	}
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Close()
	return true
}

// Release drops the lock at the end of the run.
func (l *RunLock) Release() {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		l.log.Warn("removing run lock: %v", err)
	}
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
