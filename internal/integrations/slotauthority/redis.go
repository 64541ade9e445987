package slotauthority

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisAuthority читает предлагаемые времена начала из Redis
// Для каждой тройки тенант/услуга/исполнитель хранится sorted set,
// score - unix-время начала в секундах, member - то же время в RFC 3339.
// Наполняет множества внешний планировщик, движок только читает.
type RedisAuthority struct {
	client redis.Cmdable
	log    Logger
}

// NewRedisAuthority создает источник слотов поверх Redis
func NewRedisAuthority(client redis.Cmdable, log Logger) *RedisAuthority {
	return &RedisAuthority{client: client, log: log}
}

// SlotsKey возвращает ключ sorted set с предлагаемыми слотами
func SlotsKey(tenantID *int64, serviceID, providerID int64) string {
	tenant := "-"
	if tenantID != nil {
		tenant = strconv.FormatInt(*tenantID, 10)
	}
	return fmt.Sprintf("slots:%s:%d:%d", tenant, serviceID, providerID)
}

// AvailableStarts возвращает слоты из [q.Start, q.End)
func (a *RedisAuthority) AvailableStarts(ctx context.Context, q Query) ([]time.Time, error) {
	key := SlotsKey(q.TenantID, q.Service.ID, q.Provider.ID)

	members, err := a.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatInt(q.Start.Unix(), 10),
		Max: "(" + strconv.FormatInt(q.End.Unix(), 10),
	}).Result()
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: zrangebyscore %s: %v", ErrInternal, key, err)
	}

	return parseMembers(members, a.log), nil
}

// parseMembers пропускает некорректные значения, чтобы один битый слот не ломал проверку
func parseMembers(members []string, log Logger) []time.Time {
	starts := make([]time.Time, 0, len(members))
	for _, m := range members {
		t, err := time.Parse(time.RFC3339, m)
		if err != nil {
			log.Warn("RedisAuthority: skip malformed slot %q: %v", m, err)
			continue
		}
		starts = append(starts, t)
	}
	return starts
}
