package api

import (
	"encoding/json"
	"fmt"
	"sync"

	http "github.com/bogdanfinn/fhttp"

	"github.com/serenelabs/serene/internal/crisis"
	apierrors "github.com/serenelabs/serene/internal/errors"
	"github.com/serenelabs/serene/internal/models"
)

// FetchCrisisResources requests country-specific emergency contacts. An
// empty country lets the backend choose based on the user's profile.
func (c *Client) FetchCrisisResources(country string) (models.CrisisResourceSet, error) {
	path := models.PathCrisisResource
	if country != "" {
		path += "?country=" + country
	}

	data, err := c.doJSON(http.MethodGet, path, nil)
	if err != nil {
		return models.CrisisResourceSet{}, err
	}

	var set models.CrisisResourceSet
	if err := json.Unmarshal(data, &set); err != nil {
		return models.CrisisResourceSet{}, apierrors.NewParseError(fmt.Sprintf("failed to decode resources: %v", err), path)
	}
	return set, nil
}

// ResourceCache memoizes crisis resources per country hint. A fetch failure
// with no known country falls back to the built-in default set so the user
// is never left without an actionable contact; with a known country the
// failure surfaces as an empty set.
type ResourceCache struct {
	client *Client

	mu      sync.Mutex
	country string
	set     models.CrisisResourceSet
	loaded  bool
}

// NewResourceCache creates a ResourceCache backed by the given client.
func NewResourceCache(client *Client) *ResourceCache {
	return &ResourceCache{client: client}
}

// Get returns resources for the country hint, fetching only when the hint
// changed since the last successful load.
func (rc *ResourceCache) Get(country string) (models.CrisisResourceSet, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.loaded && rc.country == country {
		return rc.set, nil
	}

	set, err := rc.client.FetchCrisisResources(country)
	if err != nil {
		if country == "" {
			set = crisis.FallbackResources()
		} else {
			set = models.CrisisResourceSet{Country: country}
		}
		rc.set = set
		rc.country = country
		rc.loaded = true
		return set, err
	}

	rc.set = set
	rc.country = country
	rc.loaded = true
	return set, nil
}

// Invalidate drops the cached set so the next Get re-fetches.
func (rc *ResourceCache) Invalidate() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.loaded = false
}
