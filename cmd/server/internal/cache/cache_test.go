package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id int) map[string]interface{} {
	return map[string]interface{}{"id": id}
}

func TestSlotGetSetClear(t *testing.T) {
	slot := NewSlot(5 * time.Minute)

	_, _, ok := slot.Get()
	assert.False(t, ok, "empty slot must miss")

	setAt := slot.Set([]map[string]interface{}{record(1), record(2)})

	got, fetchedAt, ok := slot.Get()
	require.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got[0]["id"])
	assert.Equal(t, setAt, fetchedAt)

	slot.Clear()
	_, _, ok = slot.Get()
	assert.False(t, ok, "cleared slot must miss")
}

func TestSlotTTLExpiry(t *testing.T) {
	slot := NewSlot(5 * time.Minute)

	current := time.Now()
	slot.now = func() time.Time { return current }

	slot.Set([]map[string]interface{}{record(1)})

	current = current.Add(4 * time.Minute)
	_, _, ok := slot.Get()
	assert.True(t, ok, "slot must hit inside the TTL")

	current = current.Add(2 * time.Minute)
	_, _, ok = slot.Get()
	assert.False(t, ok, "slot must miss after the TTL")

	// 过期后重新写入恢复可用
	slot.Set([]map[string]interface{}{record(2)})
	got, _, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, 2, got[0]["id"])
}

func TestSlotEmptyListIsCacheable(t *testing.T) {
	slot := NewSlot(time.Minute)
	slot.Set([]map[string]interface{}{})

	got, _, ok := slot.Get()
	assert.True(t, ok, "an empty result is still a result")
	assert.Len(t, got, 0)

	stats := slot.Stats()
	assert.True(t, stats.HasCache)
	assert.Equal(t, 0, stats.Size)
}

func TestSlotStats(t *testing.T) {
	slot := NewSlot(time.Minute)

	stats := slot.Stats()
	assert.False(t, stats.HasCache)
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, time.Duration(0), stats.Age)

	current := time.Now()
	slot.now = func() time.Time { return current }

	slot.Set([]map[string]interface{}{record(1), record(2), record(3)})
	current = current.Add(90 * time.Second)

	stats = slot.Stats()
	assert.True(t, stats.HasCache)
	assert.Equal(t, 3, stats.Size)
	assert.Equal(t, 90*time.Second, stats.Age)

	// Stats 报告槽位原始状态，过期与否由 Get 判定
	_, _, ok := slot.Get()
	assert.False(t, ok)
	assert.True(t, slot.Stats().HasCache)
}

func TestSlotGetReturnsContainerCopy(t *testing.T) {
	slot := NewSlot(time.Minute)
	slot.Set([]map[string]interface{}{record(1), record(2)})

	got, _, ok := slot.Get()
	require.True(t, ok)
	got[0] = record(99)

	again, _, ok := slot.Get()
	require.True(t, ok)
	assert.Equal(t, 1, again[0]["id"], "mutating a returned slice must not affect the slot")
}

func TestSlotFetchTimeStableAcrossReads(t *testing.T) {
	slot := NewSlot(time.Minute)
	setAt := slot.Set([]map[string]interface{}{record(1)})

	_, first, ok := slot.Get()
	require.True(t, ok)
	_, second, ok := slot.Get()
	require.True(t, ok)

	// 同一缓存槽的抓取时间在多次读取间不变
	assert.Equal(t, setAt, first)
	assert.Equal(t, first, second)
}
