package weather

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"riskradar/internal/types"
)

// Cache stores recent readings keyed by coordinate, rounded to two decimal
// places (roughly 1km) so nearby policies share a reading.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates a reading cache with the given TTL. Expired entries are
// swept at twice the TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached reading for a coordinate, if present and fresh.
func (c *Cache) Get(lat, lon float64) (*types.WeatherReading, bool) {
	v, ok := c.store.Get(cacheKey(lat, lon))
	if !ok {
		return nil, false
	}
	reading, ok := v.(*types.WeatherReading)
	return reading, ok
}

// Put stores a reading under its coordinate key with the default TTL.
func (c *Cache) Put(lat, lon float64, reading *types.WeatherReading) {
	c.store.SetDefault(cacheKey(lat, lon), reading)
}

// Len reports how many readings are currently cached, expired included.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}
