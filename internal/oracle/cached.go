package oracle

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/specialistvlad/pdbuild/internal/model"
)

// DefaultCacheSize is large enough for the unit graph of a sizable
// workspace built for two platforms.
const DefaultCacheSize = 1024

// Cached memoizes the predictions of another oracle. Every reconcile pass
// asks again for the same (unit, platform) pairs.
type Cached struct {
	inner Oracle
	cache *lru.Cache[string, []Prediction]
}

// NewCached wraps inner with an LRU cache of the given size.
func NewCached(inner Oracle, size int) (*Cached, error) {
	cache, err := lru.New[string, []Prediction](size)
	if err != nil {
		return nil, fmt.Errorf("creating prediction cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

func (c *Cached) Predict(unit model.Unit, platform model.Platform) ([]Prediction, error) {
	key := cacheKey(unit, platform)
	if preds, ok := c.cache.Get(key); ok {
		return preds, nil
	}
	preds, err := c.inner.Predict(unit, platform)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, preds)
	return preds, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int { return c.cache.Len() }

func cacheKey(u model.Unit, p model.Platform) string {
	return strings.Join([]string{
		u.PackageID,
		u.Target.Name,
		u.Target.SrcPath,
		strings.Join(u.Target.Kind, ","),
		strings.Join(u.Target.CrateTypes, ","),
		p.Triple,
	}, "\x00")
}
