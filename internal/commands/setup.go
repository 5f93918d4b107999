package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/serenelabs/serene/internal/api"
	"github.com/serenelabs/serene/internal/config"
	"github.com/serenelabs/serene/internal/crisis"
	"github.com/serenelabs/serene/internal/device"
	"github.com/serenelabs/serene/internal/location"
	"github.com/serenelabs/serene/internal/models"
)

// newClient builds an authenticated backend client from config, env and
// flags.
func newClient(cfg config.Config) (*api.Client, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, err
	}

	opts := []api.ClientOption{api.WithToken(token)}
	baseURL := cfg.BaseURL
	if baseURLFlag != "" {
		baseURL = baseURLFlag
	}
	if baseURL != "" {
		opts = append(opts, api.WithBaseURL(baseURL))
	}

	return api.NewClient(opts...)
}

// newEscalator wires the crisis escalation for a session. The banner
// callback is what renders outside the TUI; inside the TUI the model reads
// the escalator state instead.
func newEscalator(cfg config.Config, banner func(number string)) *crisis.Escalator {
	opts := []crisis.Option{crisis.WithAutoDial(cfg.AutoDial)}
	if banner != nil {
		opts = append(opts, crisis.WithBanner(banner))
	}
	return crisis.NewEscalator(device.TelDialer{}, opts...)
}

// withSessionDefaults returns the chat options every command-started session
// shares.
func withSessionDefaults(cfg config.Config, escalator *crisis.Escalator) []api.ChatOption {
	return []api.ChatOption{api.WithCrisisObserver(escalator)}
}

// acquireLocation performs the one-shot best-effort lookup. Failures only
// get a log line; the send flow proceeds without a location.
func acquireLocation(cfg config.Config) models.Location {
	if noLocationFlag || !cfg.LocationEnabled {
		return models.Location{}
	}

	provider, err := locationProvider()
	if err != nil {
		if cfg.Verbose {
			log.Printf("warning: location lookup unavailable: %v", err)
		}
		return models.Location{}
	}

	loc, err := provider.Acquire(context.Background())
	if err != nil {
		if cfg.Verbose {
			log.Printf("warning: proceeding without location: %v", err)
		}
		return models.Location{}
	}
	return loc
}

// locationProvider picks the coordinate source. SERENE_COORDS pins a fixed
// "lat,lon" pair; otherwise the IP lookup runs.
func locationProvider() (location.Provider, error) {
	if v := strings.TrimSpace(os.Getenv("SERENE_COORDS")); v != "" {
		loc, err := location.ParseCoords(v)
		if err != nil {
			return nil, err
		}
		return location.Static{Location: loc}, nil
	}
	return location.NewIPLocator()
}

// countryHint resolves the country used for resource lookups.
func countryHint(cfg config.Config) string {
	if countryFlag != "" {
		return countryFlag
	}
	return cfg.Country
}

// printCrisisBanner renders the escalation banner for non-TUI output.
func printCrisisBanner(number string) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "  ══════════════════════════════════════════════════")
	fmt.Fprintln(os.Stderr, "  You deserve immediate support.")
	if number != "" {
		fmt.Fprintf(os.Stderr, "  If you are in danger, call %s now.\n", number)
	}
	fmt.Fprintln(os.Stderr, "  The 988 Suicide & Crisis Lifeline is available 24/7.")
	fmt.Fprintln(os.Stderr, "  ══════════════════════════════════════════════════")
	fmt.Fprintln(os.Stderr)
}
