package constants

import (
	"fmt"
	"time"
)

// Redis key and TTL conventions for the cinerama backend.
// Pattern: cinerama:{module}:{operation}:{identifier}
//
// Seat state is deliberately absent here: the reservation engine always
// re-reads seats under a row lock, and caching them would reintroduce the
// double-booking race the engine exists to prevent.

const CACHE_PREFIX = "cinerama"

// Showtime metadata is stable once scheduled (capacity, price, start time)
const TTL_SHOWTIME_INFO = 15 * time.Minute

// BuildShowtimeInfoKey returns the cache key for a showtime lookup
func BuildShowtimeInfoKey(showtimeID string) string {
	return fmt.Sprintf("%s:showtimes:info:%s", CACHE_PREFIX, showtimeID)
}

// BuildRateLimitKey returns the rate limit bucket key for a client
func BuildRateLimitKey(clientIP, limitType string) string {
	return fmt.Sprintf("%s:ratelimit:%s:%s", CACHE_PREFIX, clientIP, limitType)
}
