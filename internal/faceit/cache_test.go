package faceit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCacheHitAndMiss(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)

	_, found := rc.Get("k1")
	assert.False(t, found)

	rc.Set("k1", Document{"nickname": "donk"})

	doc, found := rc.Get("k1")
	assert.True(t, found)
	assert.Equal(t, "donk", doc.String("nickname"))

	hits, misses, ratio := rc.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

func TestResponseCacheExpiry(t *testing.T) {
	rc := NewResponseCache(20*time.Millisecond, time.Minute)

	rc.Set("k1", Document{"nickname": "donk"})
	time.Sleep(40 * time.Millisecond)

	_, found := rc.Get("k1")
	assert.False(t, found)
}

func TestResponseCacheClear(t *testing.T) {
	rc := NewResponseCache(time.Minute, time.Minute)

	rc.Set("k1", Document{})
	rc.Set("k2", Document{})
	assert.Equal(t, 2, rc.ItemCount())

	rc.Clear()
	assert.Equal(t, 0, rc.ItemCount())

	hits, misses, _ := rc.Stats()
	assert.Equal(t, uint64(0), hits)
	assert.Equal(t, uint64(0), misses)
}
