package out

import (
	"bytes"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

type ScheduleExporterPort interface {
	ExportSchedule(groupName string, schedule *domain.WeekSchedule) (*bytes.Buffer, error)
}
