package cist

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

const (
	timetableSelector = "table.MainTT"
	dateCellClass     = "date"
)

type TimetableParser struct {
	classifier *domain.LessonTypeClassifier
}

func NewTimetableParser(classifier *domain.LessonTypeClassifier) *TimetableParser {
	if classifier == nil {
		classifier = domain.NewLessonTypeClassifier(nil)
	}
	return &TimetableParser{classifier: classifier}
}

// ParseTimetable раскладывает таблицу MainTT по неделям.
// Строка с ячейкой class="date" задаёт текущий день, следующие строки - это время и колонки недель 1, 2, 3...
func (p *TimetableParser) ParseTimetable(raw *domain.RawTimetable) (*domain.WeekSchedule, error) {
	// CIST часто отдаёт windows-1251
	reader, err := charset.NewReader(bytes.NewReader(raw.Body), raw.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to detect timetable charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timetable html: %w", err)
	}

	table := doc.Find(timetableSelector).First()
	if table.Length() == 0 {
		return nil, domain.ErrScheduleNotFound
	}

	schedule := domain.NewWeekSchedule()
	day := ""
	daySet := false

	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")

		if cells.Length() > 1 && cells.First().HasClass(dateCellClass) {
			day = strings.TrimSpace(cells.First().Text())
			daySet = true
			return
		}

		if cells.Length() <= 2 || !daySet {
			return
		}

		slotTime := strings.TrimSpace(cells.Eq(1).Text())
		cells.Slice(2, cells.Length()).EachWithBreak(func(j int, cell *goquery.Selection) bool {
			week := j + 1
			if week > domain.WeeksInTerm {
				return false
			}

			lesson := strings.TrimSpace(cell.Text())
			if lesson == "" {
				return true
			}

			schedule.Add(week, day, domain.LessonEntry{
				Time:   slotTime,
				Lesson: lesson,
				Type:   p.classifier.Classify(lesson),
			})
			return true
		})
	})

	return schedule, nil
}
