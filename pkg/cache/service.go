package cache

import "time"

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get retrieves a value from the cache.
	// Returns nil, false if not found or expired.
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)
}

// Remember returns the cached value for key, or computes and stores it.
// Errors from load are returned as-is and nothing is cached.
func Remember[T any](c CacheService, key string, ttl time.Duration, load func() (T, error)) (T, bool, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, true, nil
			}
		}
	}

	v, err := load()
	if err != nil {
		var zero T
		return zero, false, err
	}
	if c != nil && ttl > 0 {
		c.Set(key, v, ttl)
	}
	return v, false, nil
}
