package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// Answers holds all user responses from the wizard.
type Answers struct {
	Tunnels         []string
	ConfigDir       string
	Primary         string
	Secondary       string
	ManagedServices []string
	CooldownMinutes int
}

// Run executes the interactive wizard and returns the user's answers.
func Run(detection DetectionResult) (*Answers, error) {
	answers := &Answers{
		ConfigDir:       detection.ConfigDir,
		Primary:         "1.1.1.1",
		Secondary:       "8.8.8.8",
		CooldownMinutes: 30,
	}

	var hints []string
	if detection.WireGuardAvailable {
		hints = append(hints, "wg-quick detected")
	}
	if detection.SystemdAvailable {
		hints = append(hints, "systemd detected")
	}
	if len(detection.Tunnels) > 0 {
		hints = append(hints, fmt.Sprintf("tunnel definitions found: %s", strings.Join(detection.Tunnels, ", ")))
	}

	desc := "Pick the tunnels the agent may fail over between, in priority order."
	if len(hints) > 0 {
		desc += "\n\nAuto-detected:\n  " + strings.Join(hints, "\n  ")
	}

	var tunnelsInput string
	if len(detection.Tunnels) > 0 {
		var options []huh.Option[string]
		for _, name := range detection.Tunnels {
			options = append(options, huh.NewOption(name, name).Selected(true))
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewMultiSelect[string]().
					Title("Which tunnels are allowed?").
					Description(desc).
					Options(options...).
					Value(&answers.Tunnels),
			),
		)
		if err := form.Run(); err != nil {
			return nil, err
		}
	} else {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Allowed tunnel names (comma-separated, priority order)").
					Description(desc).
					Placeholder("wg0, wg-backup").
					Value(&tunnelsInput),
			),
		)
		if err := form.Run(); err != nil {
			return nil, err
		}
		answers.Tunnels = splitList(tunnelsInput)
	}

	if len(answers.Tunnels) == 0 {
		return nil, errors.New("at least one tunnel is required")
	}

	var servicesInput, cooldownInput string
	cooldownInput = strconv.Itoa(answers.CooldownMinutes)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Primary ping target").
				Value(&answers.Primary),
			huh.NewInput().
				Title("Secondary ping target").
				Description("Consulted only when the primary fails; use a different provider.").
				Value(&answers.Secondary),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Managed services (comma-separated, may be empty)").
				Description("Services to pause during an outage and resume afterward.").
				Placeholder("qbittorrent, sonarr, radarr").
				Value(&servicesInput),
			huh.NewInput().
				Title("Cooldown between failed attempts (minutes)").
				Value(&cooldownInput).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 0 {
						return errors.New("enter a non-negative number")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	answers.ManagedServices = splitList(servicesInput)
	if n, err := strconv.Atoi(strings.TrimSpace(cooldownInput)); err == nil {
		answers.CooldownMinutes = n
	}

	return answers, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
