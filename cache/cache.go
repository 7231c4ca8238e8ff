// Package cache provides keyword-set caching implementations.
//
// The cache sits in front of the store's keyword lookup: keys are
// "<routeKey>:<language>", values the serialized KeywordSet JSON. Keyword
// sets are written once and then read-only, so a long TTL is safe.
package cache

// KeywordCache is the interface for keyword-set caching.
type KeywordCache interface {
	// Get retrieves a cached keyword set. Returns empty string and false if
	// not found or expired.
	Get(key string) (string, bool)

	// Set stores a serialized keyword set in the cache.
	Set(key string, value string) error
}
