package token

import (
	"fmt"
	"hash/crc32"

	lru "github.com/hashicorp/golang-lru"
)

const defaultChecksumCacheSize = 1024

// Checksums is the process-wide checksum cache. Inputs are immutable
// source names, so entries never need invalidation.
var Checksums = mustNewChecksumCache(defaultChecksumCacheSize)

// ChecksumCache memoizes CRC32 checksums of source names. It is safe for
// concurrent use.
type ChecksumCache struct {
	cache *lru.Cache
}

// NewChecksumCache creates a cache holding at most size names.
func NewChecksumCache(size int) (*ChecksumCache, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("token: failed to create checksum cache: %w", err)
	}
	return &ChecksumCache{cache: cache}, nil
}

func mustNewChecksumCache(size int) *ChecksumCache {
	c, err := NewChecksumCache(size)
	if err != nil {
		panic(err)
	}
	return c
}

// Sum returns the CRC32 (IEEE) checksum of name.
func (c *ChecksumCache) Sum(name string) uint32 {
	if v, ok := c.cache.Get(name); ok {
		return v.(uint32)
	}
	sum := crc32.ChecksumIEEE([]byte(name))
	c.cache.Add(name, sum)
	return sum
}

// Len returns the number of cached names.
func (c *ChecksumCache) Len() int {
	return c.cache.Len()
}

// Checksum returns the checksum of a source name using the process-wide cache.
func Checksum(name string) uint32 {
	return Checksums.Sum(name)
}
