package out

import (
	"context"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

type TimetablePort interface {
	// Запрос HTML-расписания группы за период, статус ответа не проверяется
	FetchTimetable(ctx context.Context, query domain.ScheduleQuery) (*domain.RawTimetable, error)
}

type TimetableParserPort interface {
	// Разбор HTML в сетку из 24 недель, domain.ErrScheduleNotFound если таблицы нет
	ParseTimetable(raw *domain.RawTimetable) (*domain.WeekSchedule, error)
}
