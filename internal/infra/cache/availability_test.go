package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
	"github.com/m04kA/SMC-ShopBookingService/pkg/logger"
)

type countingMetrics struct {
	results map[string]int
}

func (m *countingMetrics) RecordCache(result string) {
	m.results[result]++
}

func newTestCache(t *testing.T) (*AvailabilityCache, *miniredis.Miniredis, *countingMetrics) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	m := &countingMetrics{results: map[string]int{}}
	return NewAvailabilityCache(client, time.Minute, logger.Nop(), m), mr, m
}

func sampleDay(date string) *domain.DayAvailability {
	return &domain.DayAvailability{
		Date:    date,
		Weekday: "Wednesday",
		Open:    "09:00",
		Close:   "18:00",
		Slots: []domain.SlotVerdict{
			{StartTime: "09:00", Available: true},
			{StartTime: "09:30", Available: false, Reason: domain.ReasonAlreadyBooked},
		},
	}
}

func TestAvailabilityCache_SetGet(t *testing.T) {
	c, mr, m := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, 1, "2025-10-15", 60)
	assert.False(t, ok)

	c.Set(ctx, 1, sampleDay("2025-10-15"), 60)

	got, ok := c.Get(ctx, 1, "2025-10-15", 60)
	require.True(t, ok)
	assert.Equal(t, sampleDay("2025-10-15"), got)

	// Другая длительность - другое поле
	_, ok = c.Get(ctx, 1, "2025-10-15", 90)
	assert.False(t, ok)

	assert.Equal(t, 1, m.results[resultHit])
	assert.Equal(t, 2, m.results[resultMiss])
	assert.Equal(t, time.Minute, mr.TTL(dayKey(1, "2025-10-15")))
}

func TestAvailabilityCache_Invalidate(t *testing.T) {
	c, mr, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, 1, sampleDay("2025-10-15"), 60)
	c.Set(ctx, 1, sampleDay("2025-10-16"), 60)
	c.Set(ctx, 2, sampleDay("2025-10-15"), 60)

	c.Invalidate(ctx, 1, "2025-10-15")

	assert.False(t, mr.Exists(dayKey(1, "2025-10-15")))
	assert.True(t, mr.Exists(dayKey(1, "2025-10-16")))
	assert.True(t, mr.Exists(dayKey(2, "2025-10-15")))

	c.InvalidateShop(ctx, 1)

	assert.False(t, mr.Exists(dayKey(1, "2025-10-16")))
	assert.True(t, mr.Exists(dayKey(2, "2025-10-15")))
}

func TestAvailabilityCache_CorruptedEntryIsMiss(t *testing.T) {
	c, mr, m := newTestCache(t)

	mr.HSet(dayKey(1, "2025-10-15"), "60", "{not json")

	_, ok := c.Get(context.Background(), 1, "2025-10-15", 60)
	assert.False(t, ok)
	assert.Equal(t, 1, m.results[resultError])
}

func TestAvailabilityCache_RedisDownIsMiss(t *testing.T) {
	c, mr, _ := newTestCache(t)
	mr.Close()

	_, ok := c.Get(context.Background(), 1, "2025-10-15", 60)
	assert.False(t, ok)

	// Не паникует и не возвращает ошибку
	c.Set(context.Background(), 1, sampleDay("2025-10-15"), 60)
	c.Invalidate(context.Background(), 1, "2025-10-15")
}
