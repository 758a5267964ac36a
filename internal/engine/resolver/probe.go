package resolver

import (
	"os"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"modgraph/internal/shared/observability"
)

const defaultProbeCacheSize = 4096

// probeCache remembers filesystem existence checks, evicting the least
// recently used entry once full. Like the resolver it is not synchronised.
type probeCache struct {
	entries *simplelru.LRU[string, bool]
}

func newProbeCache(capacity int) *probeCache {
	if capacity <= 0 {
		capacity = defaultProbeCacheSize
	}
	// NewLRU only fails for a non-positive size.
	entries, _ := simplelru.NewLRU[string, bool](capacity, nil)
	return &probeCache{entries: entries}
}

// exists stats path at most once while the answer stays resident.
func (c *probeCache) exists(path string) bool {
	if found, ok := c.entries.Get(path); ok {
		return found
	}

	observability.ResolverProbesTotal.Inc()
	info, err := os.Stat(path)
	found := err == nil && !info.IsDir()
	c.entries.Add(path, found)
	return found
}

func (c *probeCache) len() int {
	return c.entries.Len()
}

func (c *probeCache) clear() {
	c.entries.Purge()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
