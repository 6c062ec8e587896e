package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLMap_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewTTLMap[string](time.Minute)
	m.now = func() time.Time { return now }

	m.Set("a", "1")
	m.SetWithTTL("b", "2", time.Hour)

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	_, ok = m.Get("a")
	assert.False(t, ok)
	_, ok = m.Get("b")
	assert.True(t, ok)

	m.Set("c", "3")
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	m.Delete("b")
	_, ok = m.Get("b")
	assert.False(t, ok)

	m.Set("d", "4")
	m.Clear()
	_, ok = m.Get("d")
	assert.False(t, ok)
}
