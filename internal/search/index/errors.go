package index

import "errors"

// ErrCacheMiss indicates the cache file is absent or unusable. Callers fall
// back to a fresh scan.
var ErrCacheMiss = errors.New("cache miss")
