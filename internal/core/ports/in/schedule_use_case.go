package in

import (
	"context"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

type ScheduleUseCase interface {
	// Расписание группы по названию за период
	GetSchedule(ctx context.Context, groupName, startDate, endDate string) (*domain.WeekSchedule, error)

	// Список известных групп
	GroupNames() []string

	// Сброс кэша
	InvalidateGroupCache(ctx context.Context, groupName string) error
	InvalidateGroupIDCache(ctx context.Context, groupID string)
	InvalidateAllCache(ctx context.Context)
}
