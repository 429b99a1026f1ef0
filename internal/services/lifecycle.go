package services

import (
	"github.com/Rouzax/WireGuard-Monitor/internal/logging"
	"github.com/Rouzax/WireGuard-Monitor/internal/state"
)

// Lifecycle stops and resumes the managed services around an outage,
// in dependency-safe order, and remembers which ones it paused.
type Lifecycle struct {
	mgr     Manager
	store   *state.StoppedStore
	managed []string
	log     *logging.Logger
}

// NewLifecycle returns a lifecycle over the configured managed list.
func NewLifecycle(mgr Manager, store *state.StoppedStore, managed []string, log *logging.Logger) *Lifecycle {
	return &Lifecycle{mgr: mgr, store: store, managed: managed, log: log}
}

// StopOrder computes a stop order for names: running dependents are
// visited before their dependency, so nothing is stopped while
// something still running depends on it.
func StopOrder(mgr Manager, names []string) []string {
	visited := make(map[string]bool)
	var order []string
	for _, name := range names {
		visitStop(mgr, name, visited, &order)
	}
	return order
}

func visitStop(mgr Manager, name string, visited map[string]bool, order *[]string) {
	if visited[name] {
		return
	}
	visited[name] = true
	for _, dep := range mgr.Dependents(name) {
		if mgr.Running(dep) {
			visitStop(mgr, dep, visited, order)
		}
	}
	*order = append(*order, name)
}

// StartOrder computes a start order for names: requirements first. Only
// requested names are emitted; prerequisites outside the set are the
// platform's responsibility.
func StartOrder(mgr Manager, names []string) []string {
	requested := make(map[string]bool, len(names))
	for _, name := range names {
		requested[name] = true
	}
	visited := make(map[string]bool)
	var order []string
	for _, name := range names {
		visitStart(mgr, name, requested, visited, &order)
	}
	return order
}

func visitStart(mgr Manager, name string, requested, visited map[string]bool, order *[]string) {
	if visited[name] {
		return
	}
	visited[name] = true
	for _, req := range mgr.Requirements(name) {
		if requested[req] {
			visitStart(mgr, req, requested, visited, order)
		}
	}
	*order = append(*order, name)
}

// StopManaged stops the configured managed services (and their running
// dependents) in dependency order. Individual failures are logged and
// skipped; whatever was actually stopped is persisted so a later
// invocation can resume it. Returns the stopped set.
func (l *Lifecycle) StopManaged() []string {
	var candidates []string
	for _, name := range l.managed {
		if !l.mgr.Exists(name) {
			l.log.Warn("service %s not found, skipping", name)
			continue
		}
		if !l.mgr.Running(name) {
			l.log.Info("service %s already stopped", name)
			continue
		}
		candidates = append(candidates, name)
	}

	var stopped []string
	for _, name := range StopOrder(l.mgr, candidates) {
		if !l.mgr.Running(name) {
			continue
		}
		if err := l.mgr.Stop(name); err != nil {
			l.log.Error("stopping %s: %v", name, err)
			continue
		}
		l.log.Info("stopped service %s", name)
		stopped = append(stopped, name)
	}

	if len(stopped) > 0 {
		if err := l.store.Save(stopped); err != nil {
			l.log.Error("persisting stopped-service record: %v", err)
		}
	}
	return stopped
}

// StartManaged resumes everything this agent paused. The persisted
// record is unioned with any non-running configured service, in case
// the record was lost while services stayed down. The record is
// deleted once all starts were attempted; it is a best-effort hint, so
// a permanently failing service cannot block cleanup forever.
func (l *Lifecycle) StartManaged() {
	recorded, found := l.store.Load()

	seen := make(map[string]bool)
	var names []string
	for _, name := range recorded {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range l.managed {
		if !seen[name] && l.mgr.Exists(name) && !l.mgr.Running(name) {
			seen[name] = true
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		if found {
			l.store.Clear()
		}
		return
	}

	for _, name := range StartOrder(l.mgr, names) {
		if !l.mgr.Exists(name) {
			l.log.Warn("service %s not found, skipping", name)
			continue
		}
		if l.mgr.Running(name) {
			l.log.Info("service %s already running", name)
			continue
		}
		if err := l.mgr.Start(name); err != nil {
			l.log.Error("starting %s: %v", name, err)
			continue
		}
		l.log.Info("started service %s", name)
	}

	if found {
		l.store.Clear()
	}
}
