package services

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
)

// Manager abstracts the OS service manager: lookup, state, start/stop,
// and both directions of the dependency graph. The graph is never
// materialized; it is queried lazily per stop/start request.
type Manager interface {
	Exists(name string) bool
	Running(name string) bool
	Start(name string) error
	Stop(name string) error
	// Dependents returns the services that require name.
	Dependents(name string) []string
	// Requirements returns the services name requires.
	Requirements(name string) []string
}

// Runner executes systemctl and returns its combined output.
type Runner interface {
	Run(args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(args ...string) (string, error) {
	out, err := exec.Command("systemctl", args...).CombinedOutput()
	return string(out), err
}

// SystemdManager implements Manager on top of systemctl.
type SystemdManager struct {
	run Runner
	log *logging.Logger
}

// NewSystemdManager returns a manager shelling out to systemctl.
func NewSystemdManager(log *logging.Logger) *SystemdManager {
	return &SystemdManager{run: execRunner{}, log: log}
}

func unit(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

func trimUnit(name string) string {
	return strings.TrimSuffix(name, ".service")
}

func (m *SystemdManager) Exists(name string) bool {
	out, err := m.run.Run("show", unit(name), "--property=LoadState", "--value")
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "loaded"
}

func (m *SystemdManager) Running(name string) bool {
	out, _ := m.run.Run("is-active", unit(name))
	return strings.TrimSpace(out) == "active"
}

func (m *SystemdManager) Start(name string) error {
	if out, err := m.run.Run("start", unit(name)); err != nil {
		return fmt.Errorf("systemctl start %s: %w (%s)", name, err, strings.TrimSpace(out))
	}
	return nil
}

func (m *SystemdManager) Stop(name string) error {
	if out, err := m.run.Run("stop", unit(name)); err != nil {
		return fmt.Errorf("systemctl stop %s: %w (%s)", name, err, strings.TrimSpace(out))
	}
	return nil
}

func (m *SystemdManager) Dependents(name string) []string {
	return m.listDependencies(name, true)
}

func (m *SystemdManager) Requirements(name string) []string {
	return m.listDependencies(name, false)
}

func (m *SystemdManager) listDependencies(name string, reverse bool) []string {
	args := []string{"list-dependencies", "--plain", "--no-pager"}
	if reverse {
		args = append(args, "--reverse")
	}
	args = append(args, unit(name))

	out, err := m.run.Run(args...)
	if err != nil {
		m.log.Warn("systemctl list-dependencies %s: %v", name, err)
		return nil
	}

	var deps []string
	for i, line := range strings.Split(out, "\n") {
		entry := strings.TrimSpace(line)
		if entry == "" || i == 0 {
			// the first line is the unit itself
			continue
		}
		if !strings.HasSuffix(entry, ".service") {
			continue
		}
		deps = append(deps, trimUnit(entry))
	}
	return deps
}
