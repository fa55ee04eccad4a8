package graph

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/relmap/relmap/servicenow"
)

// classCache memoizes sys_id → class lookups for one walk. Failed lookups
// are cached as classUnknown so a bad node costs one round-trip, not one
// per path reaching it. The cache lives and dies with a single walk.
type classCache struct {
	src Source
	log *logrus.Logger
	lru *lru.Cache[string, string]
}

func newClassCache(src Source, log *logrus.Logger) *classCache {
	// Size is a positive constant, so New cannot fail.
	cache, _ := lru.New[string, string](classCacheSize)
	return &classCache{src: src, log: log, lru: cache}
}

// seed records a class known without a lookup (e.g. the resolved root).
func (c *classCache) seed(id, class string) {
	c.lru.Add(id, class)
}

// resolve returns the class of id, querying the source on a cache miss.
// Safe for concurrent use; the underlying cache serializes access.
func (c *classCache) resolve(ctx context.Context, id string) string {
	if class, ok := c.lru.Get(id); ok {
		return class
	}

	class := c.lookup(ctx, id)
	c.lru.Add(id, class)
	return class
}

func (c *classCache) lookup(ctx context.Context, id string) string {
	recs, err := c.src.Query(ctx, tableCI, servicenow.QueryOptions{
		Query:  fieldSysID + "=" + id,
		Fields: []string{fieldClass},
		Limit:  1,
	})
	if err != nil {
		c.log.WithError(err).WithField("sys_id", id).Warn("class lookup failed, recording unknown")
		return classUnknown
	}
	if len(recs) == 0 || recs[0].Value(fieldClass) == "" {
		return classUnknown
	}
	return recs[0].Value(fieldClass)
}
