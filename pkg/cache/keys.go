package cache

import "fmt"

// SnapshotKey is the cache key for the latest indicator snapshot of a symbol.
func SnapshotKey(market, symbol string) string {
	return fmt.Sprintf("snapshot:%s:%s", market, symbol)
}

// RefreshLockKey guards a background snapshot recompute so that only one
// worker touches a symbol at a time.
func RefreshLockKey(market, symbol string) string {
	return fmt.Sprintf("lock:refresh:%s:%s", market, symbol)
}
