package recovery

import (
	"context"
	"io"
	"testing"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
	"github.com/stretchr/testify/assert"
)

// fakeChecker pops one scripted result per Check call; the last result
// sticks.
type fakeChecker struct {
	results []bool
	calls   int
}

func (f *fakeChecker) Check(context.Context) bool {
	f.calls++
	if len(f.results) == 0 {
		return false
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r
}

type fakeTunnels struct {
	active      string
	allowed     []string
	connectOK   map[string]bool
	disconnects []string
	connects    []string
	failDisco   map[string]bool
}

func (f *fakeTunnels) DiscoverActive() (string, bool) {
	return f.active, f.active != ""
}

func (f *fakeTunnels) Connect(_ context.Context, name string) bool {
	f.connects = append(f.connects, name)
	return f.connectOK[name]
}

func (f *fakeTunnels) Disconnect(_ context.Context, name string) bool {
	f.disconnects = append(f.disconnects, name)
	return !f.failDisco[name]
}

func (f *fakeTunnels) NextInRotation(current string) string {
	for i, name := range f.allowed {
		if name == current {
			return f.allowed[(i+1)%len(f.allowed)]
		}
	}
	return f.allowed[0]
}

type fakeServices struct {
	stopCalls  int
	startCalls int
}

func (f *fakeServices) StopManaged() []string {
	f.stopCalls++
	return []string{"sonarr"}
}

func (f *fakeServices) StartManaged() { f.startCalls++ }

type fakeGate struct {
	active bool
	armed  int
}

func (f *fakeGate) Active() bool { return f.active }
func (f *fakeGate) Arm()         { f.armed++ }

type fixture struct {
	checker  *fakeChecker
	tunnels  *fakeTunnels
	services *fakeServices
	gate     *fakeGate
	orch     *Orchestrator
}

func newFixture(checkResults ...bool) *fixture {
	f := &fixture{
		checker: &fakeChecker{results: checkResults},
		tunnels: &fakeTunnels{
			active:    "t1",
			allowed:   []string{"t1", "t2"},
			connectOK: map[string]bool{},
		},
		services: &fakeServices{},
		gate:     &fakeGate{},
	}
	f.orch = New(f.checker, f.tunnels, f.services, f.gate, logging.New(io.Discard))
	return f
}

func (f *fixture) run() Outcome {
	return f.orch.Run(context.Background())
}

func TestCooldownActiveAborts(t *testing.T) {
	f := newFixture(true)
	f.gate.active = true

	assert.Equal(t, AbortedCooldown, f.run())
	assert.Zero(t, f.checker.calls, "no probe while the cooldown is active")
	assert.Zero(t, f.gate.armed)
}

func TestHealthyFastPathResumesServices(t *testing.T) {
	f := newFixture(true)

	assert.Equal(t, NoActionNeeded, f.run())
	// opportunistic resume in case a prior run left services stopped
	assert.Equal(t, 1, f.services.startCalls)
	assert.Zero(t, f.services.stopCalls)
	assert.Zero(t, f.gate.armed)
}

func TestNoActiveTunnelAborts(t *testing.T) {
	f := newFixture(false)
	f.tunnels.active = ""

	assert.Equal(t, AbortedNoTunnel, f.run())
	assert.Zero(t, f.services.stopCalls)
}

func TestDisconnectFailureArmsCooldown(t *testing.T) {
	f := newFixture(false)
	f.tunnels.failDisco = map[string]bool{"t1": true}

	assert.Equal(t, AbortedDisconnectFailed, f.run())
	// services were already stopped before the teardown attempt
	assert.Equal(t, 1, f.services.stopCalls)
	assert.Zero(t, f.services.startCalls)
	assert.Equal(t, 1, f.gate.armed)
}

func TestRecoverOriginalTunnel(t *testing.T) {
	// tunnel check fails, ISP check passes, reconnect + post-check pass
	f := newFixture(false, true, true)
	f.tunnels.connectOK["t1"] = true

	assert.Equal(t, Recovered, f.run())
	assert.Equal(t, []string{"t1"}, f.tunnels.disconnects)
	assert.Equal(t, []string{"t1"}, f.tunnels.connects)
	assert.Equal(t, 1, f.services.stopCalls)
	assert.Equal(t, 1, f.services.startCalls)
	assert.Zero(t, f.gate.armed, "a successful recovery must not arm the cooldown")
}

func TestISPDownReconnectsAndArms(t *testing.T) {
	// tunnel check fails, and the ISP check without a tunnel also fails
	f := newFixture(false, false)
	f.tunnels.connectOK["t1"] = true

	assert.Equal(t, AbortedISPDown, f.run())
	// the original tunnel is put back while waiting for the ISP
	assert.Equal(t, []string{"t1"}, f.tunnels.connects)
	assert.Equal(t, 1, f.gate.armed)
	assert.Zero(t, f.services.startCalls, "services stay stopped during an ISP outage")
}

func TestFallbackTunnelRecovers(t *testing.T) {
	// ISP is up, reconnecting t1 succeeds but connectivity stays broken,
	// the fallback t2 connects and passes the post-connect check
	f := newFixture(false, true, false, true)
	f.tunnels.connectOK["t1"] = true
	f.tunnels.connectOK["t2"] = true

	assert.Equal(t, RecoveredFallback, f.run())
	assert.Equal(t, []string{"t1", "t1"}, f.tunnels.disconnects)
	assert.Equal(t, []string{"t1", "t2"}, f.tunnels.connects)
	assert.Equal(t, 1, f.services.startCalls)
	assert.Zero(t, f.gate.armed)
}

func TestFallbackConnectFailureAfterReconnectFailure(t *testing.T) {
	// reconnect of t1 fails outright; fallback t2 fails too
	f := newFixture(false, true)

	assert.Equal(t, DegradedServicesStopped, f.run())
	assert.Equal(t, []string{"t1", "t2"}, f.tunnels.connects)
	assert.Equal(t, 1, f.gate.armed)
	assert.Zero(t, f.services.startCalls)
}

func TestFallbackConnectivityFailureDegrades(t *testing.T) {
	// every connect works, connectivity never comes back
	f := newFixture(false, true, false, false)
	f.tunnels.connectOK["t1"] = true
	f.tunnels.connectOK["t2"] = true

	assert.Equal(t, DegradedServicesStopped, f.run())
	assert.Equal(t, 1, f.gate.armed)
	assert.Zero(t, f.services.startCalls)
}

func TestOutcomeHealthy(t *testing.T) {
	assert.True(t, NoActionNeeded.Healthy())
	assert.True(t, Recovered.Healthy())
	assert.True(t, RecoveredFallback.Healthy())
	assert.False(t, DegradedServicesStopped.Healthy())
	assert.False(t, AbortedISPDown.Healthy())
}
