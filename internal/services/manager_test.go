package services

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
	"github.com/stretchr/testify/assert"
)

type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRunner) Run(args ...string) (string, error) {
	key := strings.Join(args, " ")
	return f.outputs[key], f.errs[key]
}

func newSystemd(r Runner) *SystemdManager {
	return &SystemdManager{run: r, log: logging.New(io.Discard)}
}

func TestRunning(t *testing.T) {
	m := newSystemd(&fakeRunner{outputs: map[string]string{
		"is-active sonarr.service": "active\n",
		"is-active radarr.service": "inactive\n",
	}})

	assert.True(t, m.Running("sonarr"))
	assert.False(t, m.Running("radarr"))
}

func TestExists(t *testing.T) {
	m := newSystemd(&fakeRunner{
		outputs: map[string]string{
			"show sonarr.service --property=LoadState --value": "loaded\n",
			"show ghost.service --property=LoadState --value":  "not-found\n",
		},
	})

	assert.True(t, m.Exists("sonarr"))
	assert.False(t, m.Exists("ghost"))
}

func TestStopFailureIsWrapped(t *testing.T) {
	m := newSystemd(&fakeRunner{
		outputs: map[string]string{"stop sonarr.service": "Job failed"},
		errs:    map[string]error{"stop sonarr.service": errors.New("exit status 1")},
	})

	err := m.Stop("sonarr")
	assert.ErrorContains(t, err, "sonarr")
	assert.ErrorContains(t, err, "Job failed")
}

func TestDependentsParsesReverseListing(t *testing.T) {
	m := newSystemd(&fakeRunner{outputs: map[string]string{
		"list-dependencies --plain --no-pager --reverse postgresql.service": `postgresql.service
sonarr.service
radarr.service
multi-user.target
`,
	}})

	assert.Equal(t, []string{"sonarr", "radarr"}, m.Dependents("postgresql"))
}

func TestRequirementsParsesListing(t *testing.T) {
	m := newSystemd(&fakeRunner{outputs: map[string]string{
		"list-dependencies --plain --no-pager sonarr.service": `sonarr.service
postgresql.service
network.target
`,
	}})

	assert.Equal(t, []string{"postgresql"}, m.Requirements("sonarr"))
}

func TestUnitSuffix(t *testing.T) {
	assert.Equal(t, "sonarr.service", unit("sonarr"))
	assert.Equal(t, "wg-quick@wg0.service", unit("wg-quick@wg0.service"))
}
