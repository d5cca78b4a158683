package cache

import "time"

// BytesCache stores opaque byte payloads with a TTL. It is the small
// seam between the signal service and whichever cache backs it, the
// in-process TTLCache or Redis.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
