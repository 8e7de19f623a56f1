package out

import (
	"context"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

type CachePort interface {
	GetSchedule(ctx context.Context, query domain.ScheduleQuery) (*domain.WeekSchedule, bool)
	StoreSchedule(ctx context.Context, query domain.ScheduleQuery, schedule *domain.WeekSchedule)

	// Инвалидация по событиям из RabbitMQ
	InvalidateGroup(ctx context.Context, groupID string) int
	InvalidateAll(ctx context.Context)
	Len() int
}
