package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Количество недель в сетке CIST не зависит от длины семестра
const WeeksInTerm = 24

// ScheduleQuery используется и как ключ кэша, и как параметры запроса в CIST.
// Даты в формате DD.MM.YYYY передаются как есть.
type ScheduleQuery struct {
	GroupID   string
	StartDate string
	EndDate   string
}

type LessonEntry struct {
	Time   string     `json:"time"`
	Lesson string     `json:"lesson"`
	Type   LessonType `json:"type"`
}

// DaySchedule хранит пары по дням в порядке строк исходной таблицы
type DaySchedule struct {
	days    []string
	lessons map[string][]LessonEntry
}

func (d *DaySchedule) add(day string, entry LessonEntry) {
	if d.lessons == nil {
		d.lessons = make(map[string][]LessonEntry)
	}
	if _, exists := d.lessons[day]; !exists {
		d.days = append(d.days, day)
	}
	d.lessons[day] = append(d.lessons[day], entry)
}

func (d DaySchedule) Days() []string {
	return append([]string(nil), d.days...)
}

func (d DaySchedule) Lessons(day string) []LessonEntry {
	return append([]LessonEntry(nil), d.lessons[day]...)
}

func (d DaySchedule) IsEmpty() bool {
	return len(d.days) == 0
}

func (d DaySchedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range d.days {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(d.lessons[day])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// WeekSchedule всегда содержит ровно недели 1..WeeksInTerm.
// После сборки парсером значение только читается, поэтому его можно отдавать из кэша нескольким вызывающим.
type WeekSchedule struct {
	weeks [WeeksInTerm]DaySchedule
}

func NewWeekSchedule() *WeekSchedule {
	return &WeekSchedule{}
}

// Add возвращает false для недели вне диапазона 1..WeeksInTerm
func (w *WeekSchedule) Add(week int, day string, entry LessonEntry) bool {
	if week < 1 || week > WeeksInTerm {
		return false
	}
	w.weeks[week-1].add(day, entry)
	return true
}

func (w *WeekSchedule) Week(week int) (DaySchedule, bool) {
	if week < 1 || week > WeeksInTerm {
		return DaySchedule{}, false
	}
	return w.weeks[week-1], true
}

func (w *WeekSchedule) LessonsCount() int {
	count := 0
	for _, week := range w.weeks {
		for _, lessons := range week.lessons {
			count += len(lessons)
		}
	}
	return count
}

func (w *WeekSchedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, week := range w.weeks {
		if i > 0 {
			buf.WriteByte(',')
		}
		value, err := week.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(i + 1)))
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
