package probe

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
)

// Runner executes the system ping binary and returns its combined output.
type Runner interface {
	Run(args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(args ...string) (string, error) {
	out, err := exec.Command("ping", args...).CombinedOutput()
	return string(out), err
}

// Prober issues single reachability probes by invoking ping and
// classifying its text output.
type Prober struct {
	run Runner
	log *logging.Logger
}

// NewProber returns a prober backed by the system ping binary.
func NewProber(log *logging.Logger) *Prober {
	return &Prober{run: execRunner{}, log: log}
}

// failureMarkers override any apparent reply in the same output. They
// cover both Windows and iputils ping flavors.
var failureMarkers = []string{
	"destination host unreachable",
	"destination net unreachable",
	"network is unreachable",
	"no route to host",
	"request timed out",
	"request timeout",
	"general failure",
	"transmit failed",
	"100% packet loss",
}

var replyMarkers = []string{"reply from", "bytes from"}

// classify decides whether ping output indicates a delivered reply and
// returns the line worth logging. A reply is only trusted when a TTL
// indicator accompanies it; some transports echo a reply line without
// real end-to-end delivery.
func classify(output string) (ok bool, line string) {
	lower := strings.ToLower(output)

	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			return false, lineContaining(output, marker)
		}
	}

	for _, marker := range replyMarkers {
		if strings.Contains(lower, marker) {
			reply := lineContaining(output, marker)
			if strings.Contains(strings.ToLower(reply), "ttl=") {
				return true, reply
			}
			return false, reply
		}
	}

	return false, firstLine(output)
}

func lineContaining(output, marker string) string {
	for _, l := range strings.Split(output, "\n") {
		if strings.Contains(strings.ToLower(l), marker) {
			return strings.TrimSpace(l)
		}
	}
	return firstLine(output)
}

func firstLine(output string) string {
	for _, l := range strings.Split(output, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			return t
		}
	}
	return ""
}

func pingArgs(target string, timeout time.Duration) []string {
	if runtime.GOOS == "windows" {
		ms := int(timeout / time.Millisecond)
		return []string{"-n", "1", "-w", strconv.Itoa(ms), target}
	}
	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	return []string{"-c", "1", "-W", strconv.Itoa(secs), target}
}

// Ping issues exactly one probe to target. Invocation faults count as
// failures; ping's own exit code is ignored in favor of the output text.
func (p *Prober) Ping(target string, timeout time.Duration) bool {
	out, err := p.run.Run(pingArgs(target, timeout)...)
	if err != nil && strings.TrimSpace(out) == "" {
		p.log.Warn("ping %s: %v", target, err)
		return false
	}

	ok, line := classify(out)
	if ok {
		p.log.Info("ping %s: %s", target, line)
	} else {
		p.log.Warn("ping %s failed: %s", target, line)
	}
	return ok
}

// Pinger is the probe contract the connectivity checker consumes.
type Pinger interface {
	Ping(target string, timeout time.Duration) bool
}

// Checker runs the two-anchor connectivity heuristic: a single
// provider's endpoint can be transiently unreachable without a real
// outage, so a second target is consulted after a delay.
type Checker struct {
	pinger     Pinger
	primary    string
	secondary  string
	timeout    time.Duration
	retryDelay time.Duration
	log        *logging.Logger
	sleep      func(ctx context.Context, d time.Duration) bool
}

// NewChecker builds a checker over the given probe targets.
func NewChecker(pinger Pinger, primary, secondary string, timeout, retryDelay time.Duration, log *logging.Logger) *Checker {
	return &Checker{
		pinger:     pinger,
		primary:    primary,
		secondary:  secondary,
		timeout:    timeout,
		retryDelay: retryDelay,
		log:        log,
		sleep:      sleepCtx,
	}
}

// Check returns true on the first reachable target. The secondary is
// only consulted after the primary fails and the retry delay elapsed.
func (c *Checker) Check(ctx context.Context) bool {
	if c.pinger.Ping(c.primary, c.timeout) {
		return true
	}
	c.log.Info("primary target %s unreachable, retrying %s in %s", c.primary, c.secondary, c.retryDelay)
	if !c.sleep(ctx, c.retryDelay) {
		return false
	}
	return c.pinger.Ping(c.secondary, c.timeout)
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
