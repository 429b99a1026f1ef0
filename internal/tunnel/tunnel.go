package tunnel

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
)

const (
	statePollInterval = 1 * time.Second
	stateTimeout      = 30 * time.Second
	settleDelay       = 2 * time.Second
)

// Runner executes a WireGuard utility and returns its combined output.
type Runner interface {
	Run(name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

// Controller connects, disconnects, and discovers WireGuard tunnels
// from a fixed allowed list. Each tunnel maps to a definition file
// <configDir>/<name>.conf and to a wg interface of the same name.
type Controller struct {
	allowed   []string
	configDir string
	run       Runner
	log       *logging.Logger

	pollInterval time.Duration
	timeout      time.Duration
	settle       time.Duration
	sleep        func(ctx context.Context, d time.Duration) bool
}

// New returns a controller over the ordered allowed tunnel list.
func New(allowed []string, configDir string, log *logging.Logger) *Controller {
	return &Controller{
		allowed:      allowed,
		configDir:    configDir,
		run:          execRunner{},
		log:          log,
		pollInterval: statePollInterval,
		timeout:      stateTimeout,
		settle:       settleDelay,
		sleep:        sleepCtx,
	}
}

func (c *Controller) definition(name string) string {
	return filepath.Join(c.configDir, name+".conf")
}

// activeSet returns the interfaces wg currently reports as up.
func (c *Controller) activeSet() map[string]bool {
	out, err := c.run.Run("wg", "show", "interfaces")
	if err != nil {
		c.log.Warn("wg show interfaces: %v", err)
		return nil
	}
	active := make(map[string]bool)
	for _, name := range strings.Fields(out) {
		active[name] = true
	}
	return active
}

// DiscoverActive returns the first allowed tunnel observed running.
// The allowed order is significant: it fixes which tunnel counts as
// current when several are up at once.
func (c *Controller) DiscoverActive() (string, bool) {
	active := c.activeSet()
	for _, name := range c.allowed {
		if active[name] {
			return name, true
		}
	}
	return "", false
}

// Connect brings up a tunnel and waits for its interface to appear.
// The wg-quick exit code is informational only; success is judged by
// the subsequent state polling.
func (c *Controller) Connect(ctx context.Context, name string) bool {
	conf := c.definition(name)
	if _, err := os.Stat(conf); err != nil {
		c.log.Error("tunnel %s: definition file missing: %s", name, conf)
		return false
	}

	if out, err := c.run.Run("wg-quick", "up", conf); err != nil {
		c.log.Warn("wg-quick up %s: %v (%s)", name, err, firstLine(out))
	}

	if !c.waitState(ctx, name, true) {
		c.log.Error("tunnel %s did not come up within %s", name, c.timeout)
		return false
	}

	// let routes and DNS settle before probing through the tunnel
	c.sleep(ctx, c.settle)
	c.log.Success("tunnel %s connected", name)
	return true
}

// Disconnect tears down a tunnel and waits for its interface to leave
// the running set. Symmetric timeout semantics to Connect.
func (c *Controller) Disconnect(ctx context.Context, name string) bool {
	if out, err := c.run.Run("wg-quick", "down", c.definition(name)); err != nil {
		c.log.Warn("wg-quick down %s: %v (%s)", name, err, firstLine(out))
	}

	if !c.waitState(ctx, name, false) {
		c.log.Error("tunnel %s did not go down within %s", name, c.timeout)
		return false
	}

	c.log.Info("tunnel %s disconnected", name)
	return true
}

// NextInRotation returns the cyclic successor of current in the allowed
// list. An unknown current falls back to the list's first entry.
func (c *Controller) NextInRotation(current string) string {
	for i, name := range c.allowed {
		if name == current {
			return c.allowed[(i+1)%len(c.allowed)]
		}
	}
	return c.allowed[0]
}

func (c *Controller) waitState(ctx context.Context, name string, wantUp bool) bool {
	deadline := time.Now().Add(c.timeout)
	for {
		if c.activeSet()[name] == wantUp {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		if !c.sleep(ctx, c.pollInterval) {
			return false
		}
	}
}

func firstLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			return t
		}
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
