package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/serenelabs/serene/internal/api"
	"github.com/serenelabs/serene/internal/config"
	"github.com/serenelabs/serene/internal/crisis"
	"github.com/serenelabs/serene/internal/device"
	"github.com/serenelabs/serene/internal/models"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Show crisis support contacts",
	Long: `Show crisis support hotlines and online resources.

The list comes from the backend for your country when reachable, and
falls back to the built-in US resources otherwise. Pass --open with the
number printed next to an online resource to open it in the browser.`,
	RunE: runResources,
}

var openResourceFlag int

func init() {
	resourcesCmd.Flags().IntVar(&openResourceFlag, "open", 0, "Open the Nth online resource in the browser")
}

func runResources(cmd *cobra.Command, args []string) error {
	cfg, _ := config.LoadConfig()
	country := countryHint(cfg)

	set := fetchResourceSet(cfg, country)
	if set.Empty() {
		set = crisis.FallbackResources()
	}

	if openResourceFlag > 0 {
		url, err := onlineResourceURL(set, openResourceFlag)
		if err != nil {
			return err
		}
		fmt.Printf("Opening %s\n", url)
		return device.OpenURL(url)
	}

	printResourceSet(set)
	return nil
}

// onlineResourceURL resolves the 1-based index printed next to each online
// resource in the listing.
func onlineResourceURL(set models.CrisisResourceSet, n int) (string, error) {
	if n < 1 || n > len(set.OnlineResources) {
		return "", fmt.Errorf("no online resource numbered %d", n)
	}
	return set.OnlineResources[n-1].URL, nil
}

// fetchResourceSet asks the backend, falling back to the built-in set when
// the client cannot be built or the fetch fails.
func fetchResourceSet(cfg config.Config, country string) models.CrisisResourceSet {
	client, err := newClient(cfg)
	if err != nil {
		return crisis.FallbackResources()
	}
	defer client.Close()

	cache := api.NewResourceCache(client)
	set, err := cache.Get(country)
	if err != nil && set.Empty() {
		return crisis.FallbackResources()
	}
	return set
}

func printResourceSet(set models.CrisisResourceSet) {
	titleStyle := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	numberStyle := lipgloss.NewStyle().Foreground(colorError).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	header := "Crisis support"
	switch {
	case set.CountryName != "":
		header = fmt.Sprintf("Crisis support (%s)", set.CountryName)
	case set.Country != "":
		header = fmt.Sprintf("Crisis support (%s)", strings.ToUpper(set.Country))
	}
	fmt.Println(titleStyle.Render(header))
	fmt.Println()

	if set.EmergencyNumber != "" {
		fmt.Printf("  Emergency: %s\n", numberStyle.Render(set.EmergencyNumber))
		fmt.Println()
	}

	for _, line := range set.Hotlines {
		fmt.Printf("  %s  %s\n", numberStyle.Render(line.Number), line.Name)
		if line.Description != "" {
			fmt.Printf("       %s\n", dimStyle.Render(line.Description))
		}
	}
	if len(set.Hotlines) > 0 {
		fmt.Println()
	}

	for i, res := range set.OnlineResources {
		fmt.Printf("  [%d] %s\n", i+1, res.Name)
		fmt.Printf("       %s\n", dimStyle.Render(res.URL))
	}

	if set.Empty() {
		fmt.Fprintln(os.Stderr, dimStyle.Render("No resources available for this region."))
	}
}
