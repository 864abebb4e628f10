package community

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// Cached memoizes a detector's output per graph fingerprint so repeated runs
// over the same graph (for example a threshold sweep) detect only once.
type Cached struct {
	inner  Detector
	cache  *lru.Cache[string, membership.Assignment]
	logger zerolog.Logger
}

// NewCached wraps inner with an LRU cache holding up to size graphs.
func NewCached(inner Detector, size int, logger zerolog.Logger) (*Cached, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	cache, err := lru.New[string, membership.Assignment](size)
	if err != nil {
		return nil, fmt.Errorf("creating detection cache: %w", err)
	}
	return &Cached{
		inner:  inner,
		cache:  cache,
		logger: logger.With().Str("detector", inner.Name()).Logger(),
	}, nil
}

// Name returns the wrapped detector's name.
func (c *Cached) Name() string { return c.inner.Name() }

// Detect returns the cached assignment for g or runs the wrapped detector.
// Callers receive a copy so cached entries cannot be mutated.
func (c *Cached) Detect(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error) {
	key := g.Fingerprint()
	if a, ok := c.cache.Get(key); ok {
		c.logger.Debug().Str("fingerprint", key[:12]).Msg("Detection cache hit")
		return a.Clone(), nil
	}

	a, err := c.inner.Detect(ctx, g)
	if err != nil {
		return nil, err
	}
	if evicted := c.cache.Add(key, a.Clone()); evicted {
		c.logger.Debug().Int("cached_graphs", c.cache.Len()).Msg("Detection cache evicted oldest graph")
	}
	return a, nil
}
