// Package recovery holds the decision flow that runs once per
// invocation: verify connectivity through the active tunnel, and if it
// is broken, cycle tunnels while keeping the managed services paused
// until a confirmed healthy state is reached.
package recovery

import (
	"context"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
)

// Outcome is the terminal state of one recovery cycle.
type Outcome int

const (
	// NoActionNeeded: connectivity was healthy, nothing to recover.
	NoActionNeeded Outcome = iota
	// Recovered: the original tunnel was restored.
	Recovered
	// RecoveredFallback: the next tunnel in rotation restored connectivity.
	RecoveredFallback
	// DegradedServicesStopped: no tunnel could be restored; services stay down.
	DegradedServicesStopped
	// AbortedCooldown: a recent failed attempt is still inside the cooldown window.
	AbortedCooldown
	// AbortedNoTunnel: no allowed tunnel was running, nothing to recover.
	AbortedNoTunnel
	// AbortedDisconnectFailed: the broken tunnel could not be torn down.
	AbortedDisconnectFailed
	// AbortedISPDown: the internet is unreachable even without a tunnel.
	AbortedISPDown
)

func (o Outcome) String() string {
	switch o {
	case NoActionNeeded:
		return "no action needed"
	case Recovered:
		return "recovered"
	case RecoveredFallback:
		return "recovered via fallback tunnel"
	case DegradedServicesStopped:
		return "degraded, services stopped"
	case AbortedCooldown:
		return "aborted: cooldown active"
	case AbortedNoTunnel:
		return "aborted: no active tunnel"
	case AbortedDisconnectFailed:
		return "aborted: disconnect failed"
	case AbortedISPDown:
		return "aborted: ISP down"
	default:
		return "unknown"
	}
}

// Healthy reports whether the cycle ended in a confirmed reachable state.
func (o Outcome) Healthy() bool {
	return o == NoActionNeeded || o == Recovered || o == RecoveredFallback
}

// ConnectivityChecker verifies internet reachability.
type ConnectivityChecker interface {
	Check(ctx context.Context) bool
}

// TunnelController manages the allowed tunnel set.
type TunnelController interface {
	DiscoverActive() (string, bool)
	Connect(ctx context.Context, name string) bool
	Disconnect(ctx context.Context, name string) bool
	NextInRotation(current string) string
}

// ServiceLifecycle pauses and resumes the managed services.
type ServiceLifecycle interface {
	StopManaged() []string
	StartManaged()
}

// Gate throttles repeated recovery attempts across invocations.
type Gate interface {
	Active() bool
	Arm()
}

// Orchestrator composes the probe, tunnel, service, and cooldown
// components into the single per-invocation decision flow.
type Orchestrator struct {
	checker  ConnectivityChecker
	tunnels  TunnelController
	services ServiceLifecycle
	gate     Gate
	log      *logging.Logger
}

// New wires an orchestrator from its collaborators.
func New(checker ConnectivityChecker, tunnels TunnelController, services ServiceLifecycle, gate Gate, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		checker:  checker,
		tunnels:  tunnels,
		services: services,
		gate:     gate,
		log:      log,
	}
}

// Run executes one full recovery cycle. The cooldown is armed on every
// failure or degraded exit; a fully successful recovery never arms it,
// so healthy checks are never throttled.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	if o.gate.Active() {
		o.log.Info("skipping recovery check, cooldown active")
		return AbortedCooldown
	}

	if o.checker.Check(ctx) {
		o.log.Info("connectivity healthy")
		// self-heal a previous run that stopped services but never
		// got to restart them
		o.services.StartManaged()
		return NoActionNeeded
	}

	o.log.Warn("connectivity check failed on both targets")

	current, found := o.tunnels.DiscoverActive()
	if !found {
		o.log.Error("no allowed tunnel is running, nothing to recover")
		return AbortedNoTunnel
	}
	o.log.Warn("active tunnel %s has no connectivity, starting recovery", current)

	// stop dependent services before touching the tunnel: they must not
	// be exposed during the instability that follows
	o.services.StopManaged()

	if !o.tunnels.Disconnect(ctx, current) {
		o.log.Error("could not tear down tunnel %s", current)
		o.gate.Arm()
		return AbortedDisconnectFailed
	}

	if !o.checker.Check(ctx) {
		o.log.Error("internet unreachable without a tunnel, upstream outage suspected")
		if o.tunnels.Connect(ctx, current) {
			o.log.Info("restored tunnel %s while waiting for the ISP", current)
		}
		o.log.Warn("managed services remain stopped until connectivity returns")
		o.gate.Arm()
		return AbortedISPDown
	}

	o.log.Info("internet reachable without a tunnel, reconnecting %s", current)

	if o.tunnels.Connect(ctx, current) && o.checker.Check(ctx) {
		o.log.Success("tunnel %s recovered", current)
		o.services.StartManaged()
		return Recovered
	}

	o.log.Warn("tunnel %s could not be restored, trying the next in rotation", current)
	o.tunnels.Disconnect(ctx, current)

	next := o.tunnels.NextInRotation(current)
	if o.tunnels.Connect(ctx, next) && o.checker.Check(ctx) {
		o.log.Success("fallback tunnel %s recovered connectivity", next)
		o.services.StartManaged()
		return RecoveredFallback
	}

	o.log.Error("all recovery attempts failed, managed services remain stopped")
	o.gate.Arm()
	return DegradedServicesStopped
}
