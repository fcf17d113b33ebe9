package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ShopBookingService/internal/domain"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"

	keyPrefix = "availability"
)

// AvailabilityCache кеш собранной доступности дня
// Один hash на магазин и дату, поле - длительность услуги в минутах
type AvailabilityCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	log     Logger
	metrics MetricsRecorder
}

// NewAvailabilityCache создает кеш поверх Redis
func NewAvailabilityCache(client redis.UniversalClient, ttl time.Duration, log Logger, metrics MetricsRecorder) *AvailabilityCache {
	return &AvailabilityCache{
		client:  client,
		ttl:     ttl,
		log:     log,
		metrics: metrics,
	}
}

func dayKey(shopID int64, date string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, shopID, date)
}

// Get возвращает закешированную доступность; ok=false при промахе или ошибке Redis
func (c *AvailabilityCache) Get(ctx context.Context, shopID int64, date string, durationMinutes int) (*domain.DayAvailability, bool) {
	raw, err := c.client.HGet(ctx, dayKey(shopID, date), strconv.Itoa(durationMinutes)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.record(resultMiss)
		return nil, false
	}
	if err != nil {
		c.log.Warn("AvailabilityCache.Get: shop=%d date=%s: %v", shopID, date, err)
		c.record(resultError)
		return nil, false
	}

	var day domain.DayAvailability
	if err := json.Unmarshal(raw, &day); err != nil {
		c.log.Warn("AvailabilityCache.Get: shop=%d date=%s: corrupted entry: %v", shopID, date, err)
		c.record(resultError)
		return nil, false
	}

	c.record(resultHit)
	return &day, true
}

// Set сохраняет доступность; ошибки только логируются
func (c *AvailabilityCache) Set(ctx context.Context, shopID int64, day *domain.DayAvailability, durationMinutes int) {
	raw, err := json.Marshal(day)
	if err != nil {
		c.log.Warn("AvailabilityCache.Set: shop=%d date=%s: %v", shopID, day.Date, err)
		return
	}

	key := dayKey(shopID, day.Date)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, strconv.Itoa(durationMinutes), raw)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		c.log.Warn("AvailabilityCache.Set: shop=%d date=%s: %v", shopID, day.Date, err)
	}
}

// Invalidate удаляет доступность магазина на указанные даты
func (c *AvailabilityCache) Invalidate(ctx context.Context, shopID int64, dates ...string) {
	if len(dates) == 0 {
		return
	}

	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, dayKey(shopID, d))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("AvailabilityCache.Invalidate: shop=%d dates=%v: %v", shopID, dates, err)
	}
}

// InvalidateShop удаляет всю доступность магазина (смена расписания)
func (c *AvailabilityCache) InvalidateShop(ctx context.Context, shopID int64) {
	pattern := fmt.Sprintf("%s:%d:*", keyPrefix, shopID)

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Error("AvailabilityCache.InvalidateShop: shop=%d: %v", shopID, err)
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Error("AvailabilityCache.InvalidateShop: shop=%d: %v", shopID, err)
	}
}

func (c *AvailabilityCache) record(result string) {
	if c.metrics != nil {
		c.metrics.RecordCache(result)
	}
}

// Noop кеш-заглушка, когда Redis выключен
type Noop struct{}

func (Noop) Get(context.Context, int64, string, int) (*domain.DayAvailability, bool) {
	return nil, false
}

func (Noop) Set(context.Context, int64, *domain.DayAvailability, int) {}

func (Noop) Invalidate(context.Context, int64, ...string) {}

func (Noop) InvalidateShop(context.Context, int64) {}
