package cache

import "time"

// BytesCache stores pre-encoded response bodies with a TTL. The plain HTTP
// handlers use it to serve repeated snapshot reads without recomputing.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
