package pngicon

import (
	"sync"
)

var globalCache = &cache{}

type cache struct {
	m sync.Map
}

type cacheKey struct {
	size  int
	level int
}

func loadReferenceCache(size, level int) ([]byte, bool) {
	if v, ok := globalCache.m.Load(cacheKey{size: size, level: level}); ok {
		if b, ok := v.([]byte); ok {
			return b, true
		}
	}
	return nil, false
}

func storeReferenceCache(size, level int, b []byte) {
	if b == nil {
		return
	}
	globalCache.m.Store(cacheKey{size: size, level: level}, b)
}

// Reference returns the icon the encoder would write for size.
// Results are cached for the lifetime of the process.
func (e *Encoder) Reference(size int) ([]byte, error) {
	if b, ok := loadReferenceCache(size, e.level); ok {
		return b, nil
	}
	b, err := e.Encode(size)
	if err != nil {
		return nil, err
	}
	storeReferenceCache(size, e.level, b)
	return b, nil
}
