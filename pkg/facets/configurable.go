package facets

import (
	"sync"

	"github.com/randalmurphal/facets/pkg/facets/config"
)

// Configurable holds a configuration tree that can be updated by deep
// merge. The base configuration must be set with SetConfiguration before
// Configure succeeds.
type Configurable struct {
	mu  sync.RWMutex
	cfg config.Config
}

// SetConfiguration installs base as the live configuration. base is used
// directly, not copied; a nil map installs an empty configuration.
func (c *Configurable) SetConfiguration(base map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = config.New(base)
}

// Configure deep-merges patch into the live configuration. It fails with
// config.ErrNotConfigured before SetConfiguration.
func (c *Configurable) Configure(patch map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Merge(patch)
}

// Configuration returns the live configuration. The returned Config
// shares storage with the facet and must not be read concurrently with
// Configure.
func (c *Configurable) Configuration() config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}
