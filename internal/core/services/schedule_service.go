package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

type ScheduleService struct {
	groupsPort    out.GroupDirectoryPort
	timetablePort out.TimetablePort
	parserPort    out.TimetableParserPort
	cachePort     out.CachePort
	logger        out.LoggerPort

	// Один запрос в CIST на ключ, остальные ждут его результат
	flights singleflight.Group
}

func NewScheduleService(
	groupsPort out.GroupDirectoryPort,
	timetablePort out.TimetablePort,
	parserPort out.TimetableParserPort,
	cachePort out.CachePort,
	logger out.LoggerPort,
) *ScheduleService {
	return &ScheduleService{
		groupsPort:    groupsPort,
		timetablePort: timetablePort,
		parserPort:    parserPort,
		cachePort:     cachePort,
		logger:        logger.WithModule("ScheduleService"),
	}
}

func (s *ScheduleService) GetSchedule(ctx context.Context, groupName, startDate, endDate string) (*domain.WeekSchedule, error) {
	groupID, exists := s.groupsPort.ResolveGroup(groupName)
	if !exists {
		s.logger.Warn("schedule.get.group_not_found", out.LogFields{
			"groupName": groupName,
		})
		return nil, domain.ErrGroupNotFound
	}

	query := domain.ScheduleQuery{
		GroupID:   groupID,
		StartDate: startDate,
		EndDate:   endDate,
	}

	if schedule, exists := s.cachePort.GetSchedule(ctx, query); exists {
		s.logger.Debug("schedule.get.cache.hit", out.LogFields{
			"groupName": groupName,
			"groupId":   groupID,
		})
		return schedule, nil
	}

	s.logger.Debug("schedule.get.cache.miss", out.LogFields{
		"groupName": groupName,
		"groupId":   groupID,
	})

	return s.loadOnce(ctx, query)
}

// loadOnce объединяет одновременные промахи по одному ключу.
// Загрузка не отменяется вместе с контекстом первого вызывающего, её ограничивает таймаут HTTP-клиента.
func (s *ScheduleService) loadOnce(ctx context.Context, query domain.ScheduleQuery) (*domain.WeekSchedule, error) {
	flightCtx := context.WithoutCancel(ctx)
	resultCh := s.flights.DoChan(flightKey(query), func() (interface{}, error) {
		return s.load(flightCtx, query)
	})

	select {
	case result := <-resultCh:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Shared {
			s.logger.Debug("schedule.load.shared", out.LogFields{
				"groupId": query.GroupID,
			})
		}
		return result.Val.(*domain.WeekSchedule), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *ScheduleService) load(ctx context.Context, query domain.ScheduleQuery) (*domain.WeekSchedule, error) {
	// Пока ждали очереди, расписание могли уже положить в кэш
	if schedule, exists := s.cachePort.GetSchedule(ctx, query); exists {
		return schedule, nil
	}

	started := time.Now()
	logFields := out.LogFields{
		"groupId":   query.GroupID,
		"startDate": query.StartDate,
		"endDate":   query.EndDate,
	}

	raw, err := s.timetablePort.FetchTimetable(ctx, query)
	if err != nil {
		s.logger.Error("schedule.load.fetch_failed", mergeFields(logFields, out.LogFields{
			"error": err.Error(),
		}))
		var transportErr *domain.TransportError
		if !errors.As(err, &transportErr) {
			err = &domain.TransportError{Err: err}
		}
		return nil, err
	}

	if raw.StatusCode != http.StatusOK {
		s.logger.Error("schedule.load.unexpected_status", mergeFields(logFields, out.LogFields{
			"status": raw.StatusCode,
		}))
		return nil, &domain.RemoteFetchError{StatusCode: raw.StatusCode}
	}

	schedule, err := s.parserPort.ParseTimetable(raw)
	if err != nil {
		s.logger.Error("schedule.load.parse_failed", mergeFields(logFields, out.LogFields{
			"error": err.Error(),
		}))
		if !errors.Is(err, domain.ErrScheduleNotFound) {
			err = fmt.Errorf("%w: %v", domain.ErrScheduleNotFound, err)
		}
		return nil, err
	}

	// В кэш попадает только полностью разобранное расписание
	s.cachePort.StoreSchedule(ctx, query, schedule)

	s.logger.Info("schedule.load.success", mergeFields(logFields, out.LogFields{
		"lessonsCount": schedule.LessonsCount(),
		"durationMs":   time.Since(started).Milliseconds(),
	}))

	return schedule, nil
}

func (s *ScheduleService) GroupNames() []string {
	return s.groupsPort.GroupNames()
}

func (s *ScheduleService) InvalidateGroupCache(ctx context.Context, groupName string) error {
	groupID, exists := s.groupsPort.ResolveGroup(groupName)
	if !exists {
		return domain.ErrGroupNotFound
	}

	s.InvalidateGroupIDCache(ctx, groupID)
	return nil
}

func (s *ScheduleService) InvalidateGroupIDCache(ctx context.Context, groupID string) {
	removed := s.cachePort.InvalidateGroup(ctx, groupID)

	s.logger.Info("schedule.cache.invalidated", out.LogFields{
		"groupId": groupID,
		"removed": removed,
	})
}

func (s *ScheduleService) InvalidateAllCache(ctx context.Context) {
	s.cachePort.InvalidateAll(ctx)

	s.logger.Info("schedule.cache.invalidated_all", out.LogFields{})
}

func flightKey(query domain.ScheduleQuery) string {
	return strings.Join([]string{query.GroupID, query.StartDate, query.EndDate}, "\x00")
}

func mergeFields(base, extra out.LogFields) out.LogFields {
	merged := make(out.LogFields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
