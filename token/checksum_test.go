package token

import (
	"hash/crc32"
	"sync"
	"testing"
)

func TestChecksumCache(t *testing.T) {
	c, err := NewChecksumCache(2)
	if err != nil {
		t.Fatalf("NewChecksumCache() error = %v", err)
	}

	want := crc32.ChecksumIEEE([]byte("User"))
	if got := c.Sum("User"); got != want {
		t.Errorf("Sum() = %d, want %d", got, want)
	}
	if got := c.Sum("User"); got != want {
		t.Errorf("cached Sum() = %d, want %d", got, want)
	}

	c.Sum("Order")
	c.Sum("Invoice")
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestChecksumCacheInvalidSize(t *testing.T) {
	if _, err := NewChecksumCache(0); err == nil {
		t.Error("NewChecksumCache(0) should return error")
	}
}

func TestChecksumConcurrent(t *testing.T) {
	want := crc32.ChecksumIEEE([]byte("events"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Checksum("events"); got != want {
				t.Errorf("Checksum() = %d, want %d", got, want)
			}
		}()
	}
	wg.Wait()
}
