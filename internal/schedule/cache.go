package schedule

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/platform/pkg/logging"
)

// SlotCache keeps resolved doctor-day slot views in Redis for a short TTL.
// Every booking and status transition invalidates the affected day, so a
// re-query after a cancellation sees the freed slot. A nil cache disables
// caching entirely.
type SlotCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewSlotCache wraps a Redis client. TTL values <= 0 fall back to 30s.
func NewSlotCache(rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *SlotCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotCache{rdb: rdb, ttl: ttl, logger: logger}
}

func slotKey(doctorID uuid.UUID, date string) string {
	return "slots:" + doctorID.String() + ":" + date
}

// Get returns the cached doctor-day slots, or ok=false on miss or error.
// Cache failures are soft: the caller recomputes.
func (c *SlotCache) Get(ctx context.Context, doctorID uuid.UUID, date string) ([]Slot, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, slotKey(doctorID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("slot cache read failed", "error", err, "doctor_id", doctorID, "date", date)
		}
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		c.logger.Warn("slot cache decode failed", "error", err, "doctor_id", doctorID, "date", date)
		return nil, false
	}
	return slots, true
}

// Set stores the doctor-day slots.
func (c *SlotCache) Set(ctx context.Context, doctorID uuid.UUID, date string, slots []Slot) {
	if c == nil {
		return
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, slotKey(doctorID, date), data, c.ttl).Err(); err != nil {
		c.logger.Warn("slot cache write failed", "error", err, "doctor_id", doctorID, "date", date)
	}
}

// Invalidate drops the cached day after a write to the appointment book.
func (c *SlotCache) Invalidate(ctx context.Context, doctorID uuid.UUID, date string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, slotKey(doctorID, date)).Err(); err != nil {
		c.logger.Warn("slot cache invalidate failed", "error", err, "doctor_id", doctorID, "date", date)
	}
}
