package cache

import "fmt"

// ModelCatalogKey holds the engine's model catalog between refreshes.
func ModelCatalogKey() string {
	return "engine:models"
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
