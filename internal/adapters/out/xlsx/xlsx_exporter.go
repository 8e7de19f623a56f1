package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

const sheetName = "Розклад"

type XlsxExporter struct{}

func NewXlsxExporter() *XlsxExporter {
	return &XlsxExporter{}
}

type slotRow struct {
	day  string
	time string
}

// ExportSchedule повторяет сетку CIST: строки - день и время, колонки - недели 1..24.
// Несколько пар в одной ячейке разделяются переводом строки.
func (e *XlsxExporter) ExportSchedule(groupName string, schedule *domain.WeekSchedule) (*bytes.Buffer, error) {
	rows, cells := collectRows(schedule)

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, colName(3), colName(2+domain.WeeksInTerm), 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	lessonStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	// Заголовок
	f.SetCellValue(sheetName, "A1", groupName)
	f.SetCellValue(sheetName, "A2", "День")
	f.SetCellValue(sheetName, "B2", "Час")
	for week := 1; week <= domain.WeeksInTerm; week++ {
		f.SetCellValue(sheetName, cell(colName(2+week), 2), fmt.Sprintf("Тиждень %d", week))
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(2+domain.WeeksInTerm), 2), headerStyle)

	// Данные
	row := 3
	for _, r := range rows {
		f.SetCellValue(sheetName, cell("A", row), r.day)
		f.SetCellValue(sheetName, cell("B", row), r.time)
		for week := 1; week <= domain.WeeksInTerm; week++ {
			if lessons := cells[week-1][r]; len(lessons) > 0 {
				f.SetCellValue(sheetName, cell(colName(2+week), row), strings.Join(lessons, "\n"))
			}
		}
		row++
	}
	if row > 3 {
		f.SetCellStyle(sheetName, "C3", cell(colName(2+domain.WeeksInTerm), row-1), lessonStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf, nil
}

// collectRows собирает уникальные пары (день, время) в порядке первого появления
func collectRows(schedule *domain.WeekSchedule) ([]slotRow, [domain.WeeksInTerm]map[slotRow][]string) {
	var cells [domain.WeeksInTerm]map[slotRow][]string
	var rows []slotRow
	seen := make(map[slotRow]bool)
	dayOrder := make(map[string]int)

	for week := 1; week <= domain.WeeksInTerm; week++ {
		cells[week-1] = make(map[slotRow][]string)
		days, _ := schedule.Week(week)
		for _, day := range days.Days() {
			if _, ok := dayOrder[day]; !ok {
				dayOrder[day] = len(dayOrder)
			}
			for _, lesson := range days.Lessons(day) {
				r := slotRow{day: day, time: lesson.Time}
				if !seen[r] {
					seen[r] = true
					rows = append(rows, r)
				}
				cells[week-1][r] = append(cells[week-1][r], lesson.Lesson)
			}
		}
	}

	// Строки одного дня держим вместе, даже если день впервые встретился в разных неделях
	grouped := make([][]slotRow, len(dayOrder))
	for _, r := range rows {
		grouped[dayOrder[r.day]] = append(grouped[dayOrder[r.day]], r)
	}
	rows = rows[:0]
	for _, g := range grouped {
		rows = append(rows, g...)
	}

	return rows, cells
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
