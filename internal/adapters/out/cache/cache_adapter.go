package cache

import (
	"context"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/suchimauz/cist-schedule-api/internal/config"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

// CacheAdapter хранит разобранные расписания с ограничением по количеству и времени жизни.
// TTL отсчитывается от момента записи, чтение его не продлевает.
// При переполнении вытесняется давно не читавшаяся запись.
type CacheAdapter struct {
	schedules *expirable.LRU[domain.ScheduleQuery, *domain.WeekSchedule]
	logger    out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) *CacheAdapter {
	c := &CacheAdapter{
		logger: logger.WithModule("CacheAdapter"),
	}

	c.schedules = expirable.NewLRU[domain.ScheduleQuery, *domain.WeekSchedule](
		cfg.Cache.Size,
		c.onEvict,
		cfg.Cache.TTL,
	)

	c.logger.Info("cache.init", out.LogFields{
		"size": cfg.Cache.Size,
		"ttl":  cfg.Cache.TTL.String(),
	})

	return c
}

func (c *CacheAdapter) GetSchedule(ctx context.Context, query domain.ScheduleQuery) (*domain.WeekSchedule, bool) {
	schedule, exists := c.schedules.Get(query)
	if !exists {
		c.logger.Debug("cache.schedule.get.miss", out.LogFields{
			"groupId":   query.GroupID,
			"startDate": query.StartDate,
			"endDate":   query.EndDate,
		})
		return nil, false
	}

	c.logger.Debug("cache.schedule.get.hit", out.LogFields{
		"groupId":   query.GroupID,
		"startDate": query.StartDate,
		"endDate":   query.EndDate,
	})
	return schedule, true
}

func (c *CacheAdapter) StoreSchedule(ctx context.Context, query domain.ScheduleQuery, schedule *domain.WeekSchedule) {
	if schedule == nil {
		return
	}

	c.logger.Debug("cache.schedule.store", out.LogFields{
		"groupId":      query.GroupID,
		"startDate":    query.StartDate,
		"endDate":      query.EndDate,
		"lessonsCount": schedule.LessonsCount(),
	})

	c.schedules.Add(query, schedule)
}

// InvalidateGroup удаляет все периоды группы, возвращает число удалённых записей
func (c *CacheAdapter) InvalidateGroup(ctx context.Context, groupID string) int {
	removed := 0
	for _, query := range c.schedules.Keys() {
		if query.GroupID == groupID && c.schedules.Remove(query) {
			removed++
		}
	}

	c.logger.Info("cache.schedule.invalidate_group", out.LogFields{
		"groupId": groupID,
		"removed": removed,
	})
	return removed
}

func (c *CacheAdapter) InvalidateAll(ctx context.Context) {
	c.schedules.Purge()

	c.logger.Info("cache.schedule.invalidate_all", out.LogFields{})
}

func (c *CacheAdapter) Len() int {
	return c.schedules.Len()
}

func (c *CacheAdapter) onEvict(query domain.ScheduleQuery, _ *domain.WeekSchedule) {
	c.logger.Debug("cache.schedule.evicted", out.LogFields{
		"groupId":   query.GroupID,
		"startDate": query.StartDate,
		"endDate":   query.EndDate,
	})
}
