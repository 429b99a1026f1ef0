package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestGenerateConfigMinimal(t *testing.T) {
	answers := Answers{
		Tunnels:         []string{"wg0"},
		ConfigDir:       "/etc/wireguard",
		Primary:         "1.1.1.1",
		Secondary:       "8.8.8.8",
		CooldownMinutes: 30,
	}

	out, err := GenerateConfig(answers)
	require.NoError(t, err)

	assert.Contains(t, out, "- wg0")
	assert.Contains(t, out, "primary: 1.1.1.1")
	assert.Contains(t, out, "secondary: 8.8.8.8")
	assert.Contains(t, out, "cooldown_minutes: 30")
	assert.Contains(t, out, "managed_services: []")
}

func TestGenerateConfigFull(t *testing.T) {
	answers := Answers{
		Tunnels:         []string{"office", "backup"},
		ConfigDir:       "/opt/wg",
		Primary:         "9.9.9.9",
		Secondary:       "8.8.4.4",
		ManagedServices: []string{"qbittorrent", "sonarr"},
		CooldownMinutes: 15,
	}

	out, err := GenerateConfig(answers)
	require.NoError(t, err)

	assert.Contains(t, out, "- office")
	assert.Contains(t, out, "- backup")
	assert.Contains(t, out, "wireguard_config_dir: /opt/wg")
	assert.Contains(t, out, "- qbittorrent")
	assert.Contains(t, out, "- sonarr")
}

func TestGenerateConfigIsValidYAML(t *testing.T) {
	answers := Answers{
		Tunnels:         []string{"wg0", "wg1"},
		ConfigDir:       "/etc/wireguard",
		Primary:         "1.1.1.1",
		Secondary:       "8.8.8.8",
		ManagedServices: []string{"sonarr"},
		CooldownMinutes: 30,
	}

	out, err := GenerateConfig(answers)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &parsed))
	assert.Contains(t, parsed, "tunnels")
	assert.Contains(t, parsed, "ping")
	assert.Contains(t, parsed, "state_dir")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, b ,"))
	assert.Empty(t, splitList("  "))
}
