// Package cache holds short-lived eligibility answers so repeated checks for
// the same patient do not re-query the payer.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/observability/metrics"
	"github.com/drfirst/go-edi/internal/x12/generate"
	"github.com/drfirst/go-edi/pkg/idempotency"
)

// EligibilityCache is an in-memory TTL cache of eligibility results
type EligibilityCache struct {
	cache   *gocache.Cache
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewEligibilityCache creates a cache. m may be nil.
func NewEligibilityCache(ttl, cleanupInterval time.Duration, m *metrics.Metrics) *EligibilityCache {
	return &EligibilityCache{
		cache:   gocache.New(ttl, cleanupInterval),
		metrics: m,
		now:     time.Now,
	}
}

// Key identifies one patient at one payer for the current day
func (c *EligibilityCache) Key(p generate.Patient, payerID string) string {
	return idempotency.InquiryKey(inquiry.OpEligibility, payerID, p.LastName, p.FirstName, p.DateOfBirth, c.now())
}

// Get retrieves a result and counts the hit or miss
func (c *EligibilityCache) Get(key string) (*inquiry.EligibilityResult, bool) {
	if val, found := c.cache.Get(key); found {
		if res, ok := val.(*inquiry.EligibilityResult); ok {
			c.metrics.CacheLookup(true)
			return res, true
		}
	}
	c.metrics.CacheLookup(false)
	return nil, false
}

// Set stores a result if it is a definitive answer. Transport faults,
// rejections and validation failures are never cached.
func (c *EligibilityCache) Set(key string, res *inquiry.EligibilityResult) bool {
	if res == nil || !Cacheable(res.Outcome) {
		return false
	}
	c.cache.SetDefault(key, res)
	return true
}

// Cacheable reports whether an outcome is a definitive coverage answer
func Cacheable(out inquiry.Outcome) bool {
	return out.Kind == inquiry.KindNone || out.Kind == inquiry.KindNoActiveCoverage
}

// Len returns the number of cached entries, expired ones included
func (c *EligibilityCache) Len() int {
	return c.cache.ItemCount()
}

// Flush removes every entry
func (c *EligibilityCache) Flush() {
	c.cache.Flush()
}
