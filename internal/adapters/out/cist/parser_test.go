package cist

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

func htmlTimetable(rows string) *domain.RawTimetable {
	body := `<html><body><table class="MainTT">` + rows + `</table></body></html>`
	return &domain.RawTimetable{
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(body),
	}
}

func mustParse(t *testing.T, raw *domain.RawTimetable) *domain.WeekSchedule {
	t.Helper()
	schedule, err := NewTimetableParser(nil).ParseTimetable(raw)
	if err != nil {
		t.Fatalf("ParseTimetable failed: %v", err)
	}
	return schedule
}

func lessonsOf(t *testing.T, schedule *domain.WeekSchedule, week int, day string) []domain.LessonEntry {
	t.Helper()
	days, ok := schedule.Week(week)
	if !ok {
		t.Fatalf("week %d is missing", week)
	}
	return days.Lessons(day)
}

func TestParseTimetable_NoTable(t *testing.T) {
	raw := &domain.RawTimetable{
		StatusCode:  200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(`<html><body><table class="Other"><tr><td>x</td></tr></table></body></html>`),
	}

	schedule, err := NewTimetableParser(nil).ParseTimetable(raw)
	if !errors.Is(err, domain.ErrScheduleNotFound) {
		t.Fatalf("expected ErrScheduleNotFound, got %v", err)
	}
	if schedule != nil {
		t.Errorf("expected no schedule, got %+v", schedule)
	}
}

func TestParseTimetable_DayAndSlot(t *testing.T) {
	schedule := mustParse(t, htmlTimetable(`
		<tr><td class="date">01.09</td><td></td></tr>
		<tr><td></td><td>9:00</td><td>Лк Higher Math</td><td></td><td>Пз Physics</td></tr>
	`))

	wantWeek1 := []domain.LessonEntry{{Time: "9:00", Lesson: "Лк Higher Math", Type: domain.LessonTypeLecture}}
	if got := lessonsOf(t, schedule, 1, "01.09"); !reflect.DeepEqual(got, wantWeek1) {
		t.Errorf("week 1: got %+v, want %+v", got, wantWeek1)
	}

	// Пустая ячейка занимает колонку второй недели
	if got := lessonsOf(t, schedule, 2, "01.09"); len(got) != 0 {
		t.Errorf("week 2: expected no lessons, got %+v", got)
	}

	wantWeek3 := []domain.LessonEntry{{Time: "9:00", Lesson: "Пз Physics", Type: domain.LessonTypePractice}}
	if got := lessonsOf(t, schedule, 3, "01.09"); !reflect.DeepEqual(got, wantWeek3) {
		t.Errorf("week 3: got %+v, want %+v", got, wantWeek3)
	}

	for week := 4; week <= domain.WeeksInTerm; week++ {
		days, _ := schedule.Week(week)
		if !days.IsEmpty() {
			t.Errorf("week %d: expected empty, got days %v", week, days.Days())
		}
	}
	if schedule.LessonsCount() != 2 {
		t.Errorf("expected 2 lessons, got %d", schedule.LessonsCount())
	}
}

func TestParseTimetable_WhitespaceCellsAndOrphanRows(t *testing.T) {
	schedule := mustParse(t, htmlTimetable(`
		<tr><td></td><td>7:45</td><td>Лк before any day</td></tr>
		<tr><td class="date">Пн 02.09</td><td></td><td>Лк on date row</td></tr>
		<tr><td></td><td>9:30</td><td>   </td><td>&nbsp;</td><td>
		</td></tr>
		<tr><td>9:30</td><td>Лб too short</td></tr>
	`))

	if schedule.LessonsCount() != 0 {
		t.Fatalf("expected no lessons, got %d", schedule.LessonsCount())
	}
}

func TestParseTimetable_DaysKeepRowOrder(t *testing.T) {
	schedule := mustParse(t, htmlTimetable(`
		<tr><td class="date">Пн 02.09</td><td></td></tr>
		<tr><td></td><td>7:45</td><td>ВМ Лк 161</td></tr>
		<tr><td></td><td>9:30</td><td>ОП Лб 285</td></tr>
		<tr><td class="date">Вт 03.09</td><td></td></tr>
		<tr><td></td><td>11:15</td><td>ФВ Зал</td></tr>
	`))

	week, _ := schedule.Week(1)
	if got := week.Days(); !reflect.DeepEqual(got, []string{"Пн 02.09", "Вт 03.09"}) {
		t.Fatalf("unexpected day order %v", got)
	}

	monday := week.Lessons("Пн 02.09")
	if len(monday) != 2 || monday[0].Time != "7:45" || monday[1].Time != "9:30" {
		t.Errorf("unexpected monday lessons %+v", monday)
	}
	if monday[1].Type != domain.LessonTypeLab {
		t.Errorf("expected lab, got %q", monday[1].Type)
	}
	if tuesday := week.Lessons("Вт 03.09"); len(tuesday) != 1 || tuesday[0].Type != domain.LessonTypeCredit {
		t.Errorf("unexpected tuesday lessons %+v", tuesday)
	}
}

func TestParseTimetable_ExtraWeekColumnsIgnored(t *testing.T) {
	var row strings.Builder
	row.WriteString(`<tr><td></td><td>7:45</td>`)
	for week := 1; week <= domain.WeeksInTerm+3; week++ {
		fmt.Fprintf(&row, `<td>Лк week %d</td>`, week)
	}
	row.WriteString(`</tr>`)

	schedule := mustParse(t, htmlTimetable(`<tr><td class="date">01.09</td><td></td></tr>` + row.String()))

	if schedule.LessonsCount() != domain.WeeksInTerm {
		t.Fatalf("expected %d lessons, got %d", domain.WeeksInTerm, schedule.LessonsCount())
	}
	last := lessonsOf(t, schedule, domain.WeeksInTerm, "01.09")
	if len(last) != 1 || last[0].Lesson != fmt.Sprintf("Лк week %d", domain.WeeksInTerm) {
		t.Errorf("unexpected last week lessons %+v", last)
	}
}

func TestParseTimetable_Windows1251(t *testing.T) {
	page := `<html><body><table class="MainTT">` +
		`<tr><td class="date">Пн 02.09</td><td></td></tr>` +
		`<tr><td></td><td>7:45</td><td>ВМ Ісп 161</td></tr>` +
		`</table></body></html>`

	encoded, err := charmap.Windows1251.NewEncoder().String(page)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}

	schedule := mustParse(t, &domain.RawTimetable{
		StatusCode:  200,
		ContentType: "text/html; charset=windows-1251",
		Body:        []byte(encoded),
	})

	lessons := lessonsOf(t, schedule, 1, "Пн 02.09")
	if len(lessons) != 1 || lessons[0].Lesson != "ВМ Ісп 161" || lessons[0].Type != domain.LessonTypeExam {
		t.Errorf("unexpected lessons %+v", lessons)
	}
}

func TestParseTimetable_CustomClassifier(t *testing.T) {
	classifier := domain.NewLessonTypeClassifier([]domain.LessonTypeMarker{
		{Marker: "Пз", Type: domain.LessonTypePractice},
		{Marker: "Лк", Type: domain.LessonTypeLecture},
	})

	schedule, err := NewTimetableParser(classifier).ParseTimetable(htmlTimetable(`
		<tr><td class="date">01.09</td><td></td></tr>
		<tr><td></td><td>9:00</td><td>Лк/Пз combined</td></tr>
	`))
	if err != nil {
		t.Fatalf("ParseTimetable failed: %v", err)
	}

	if got := lessonsOf(t, schedule, 1, "01.09"); got[0].Type != domain.LessonTypePractice {
		t.Errorf("expected configured order to pick practice, got %q", got[0].Type)
	}
}
