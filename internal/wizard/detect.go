package wizard

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// DetectionResult holds what was auto-detected on the system.
type DetectionResult struct {
	WireGuardAvailable bool
	SystemdAvailable   bool
	ConfigDir          string   // directory holding tunnel definitions
	Tunnels            []string // tunnel names found in ConfigDir
}

// Detector abstracts filesystem and path lookups for testing.
type Detector interface {
	LookPath(name string) (string, error)
	Stat(path string) (os.FileInfo, error)
	Glob(pattern string) ([]string, error)
}

// OSDetector uses the real OS for detection.
type OSDetector struct{}

func (OSDetector) LookPath(name string) (string, error)  { return exec.LookPath(name) }
func (OSDetector) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (OSDetector) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }

// Detect scans the environment for WireGuard tooling and existing
// tunnel definitions.
func Detect(d Detector) DetectionResult {
	if d == nil {
		d = OSDetector{}
	}

	result := DetectionResult{ConfigDir: "/etc/wireguard"}

	if _, err := d.LookPath("wg-quick"); err == nil {
		result.WireGuardAvailable = true
	}
	if _, err := d.LookPath("systemctl"); err == nil {
		result.SystemdAvailable = true
	}

	confs, err := d.Glob(filepath.Join(result.ConfigDir, "*.conf"))
	if err != nil {
		return result
	}
	for _, conf := range confs {
		name := strings.TrimSuffix(filepath.Base(conf), ".conf")
		if name != "" {
			result.Tunnels = append(result.Tunnels, name)
		}
	}
	sort.Strings(result.Tunnels)

	return result
}
