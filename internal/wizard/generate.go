package wizard

import (
	"bytes"
	"text/template"
)

const configTemplate = `# wireguard-monitor configuration
# Documentation: https://github.com/Rouzax/WireGuard-Monitor

# Allowed tunnels, in priority order. The first running one is treated
# as current; failover cycles through the list.
tunnels:
{{- range .Tunnels }}
  - {{ . }}
{{- end }}

wireguard_config_dir: {{ .ConfigDir }}

ping:
  primary: {{ .Primary }}
  secondary: {{ .Secondary }}
  timeout_seconds: 5
  retry_seconds: 10

cooldown_minutes: {{ .CooldownMinutes }}

# Services paused during an outage and resumed once connectivity is
# restored, in dependency-safe order.
managed_services:
{{- if .ManagedServices }}
{{- range .ManagedServices }}
  - {{ . }}
{{- end }}
{{- else }} []
{{- end }}

state_dir: /var/lib/wireguard-monitor
log_file: /var/log/wireguard-monitor.log
`

// GenerateConfig renders a config file from wizard answers.
func GenerateConfig(answers Answers) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, answers); err != nil {
		return "", err
	}
	return buf.String(), nil
}
