package redis

import (
	"context"
	"time"
)

// ReportCache holds rendered analyzer risk reports keyed by wallet address.
// Reports are derived data; the cache only saves recomputation, so entries
// expire under a TTL and misses are not errors.
type ReportCache struct {
	ttl time.Duration
}

var (
	setReportValue = Set
	getReportValue = Get
	delReportValue = Del
)

// NewReportCache creates a report cache with the given entry lifetime.
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{ttl: ttl}
}

// Put caches the JSON-rendered report for an address.
func (c *ReportCache) Put(ctx context.Context, address string, reportJSON []byte) error {
	return setReportValue(ctx, reportKey(address), reportJSON, c.ttl)
}

// Get returns the cached report JSON for an address. ok is false on a miss.
func (c *ReportCache) Get(ctx context.Context, address string) (data []byte, ok bool, err error) {
	value, err := getReportValue(ctx, reportKey(address))
	if err != nil {
		if IsNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Invalidate drops the cached report for an address.
func (c *ReportCache) Invalidate(ctx context.Context, address string) error {
	return delReportValue(ctx, reportKey(address))
}

func reportKey(address string) string {
	return "analyzer:report:" + address
}
