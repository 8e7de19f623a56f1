package domain

import (
	"fmt"
	"strings"
)

type LessonType string

const (
	LessonTypeUnknown      LessonType = ""
	LessonTypeLecture      LessonType = "Лекція"
	LessonTypePractice     LessonType = "Практика"
	LessonTypeLab          LessonType = "Лабораторна"
	LessonTypeCredit       LessonType = "Залік"
	LessonTypeExam         LessonType = "Іспит"
	LessonTypeConsultation LessonType = "Консультація"
)

type LessonTypeMarker struct {
	Marker string
	Type   LessonType
}

// Порядок важен: "Лк" проверяется раньше "Пз" и т.д.
var DefaultLessonTypeMarkers = []LessonTypeMarker{
	{Marker: "Лк", Type: LessonTypeLecture},
	{Marker: "Пз", Type: LessonTypePractice},
	{Marker: "Лб", Type: LessonTypeLab},
	{Marker: "Зал", Type: LessonTypeCredit},
	{Marker: "Ісп", Type: LessonTypeExam},
	{Marker: "Конс", Type: LessonTypeConsultation},
}

type LessonTypeClassifier struct {
	markers []LessonTypeMarker
}

func NewLessonTypeClassifier(markers []LessonTypeMarker) *LessonTypeClassifier {
	if len(markers) == 0 {
		markers = DefaultLessonTypeMarkers
	}
	return &LessonTypeClassifier{
		markers: append([]LessonTypeMarker(nil), markers...),
	}
}

// Classify возвращает тип первого найденного маркера
func (c *LessonTypeClassifier) Classify(lesson string) LessonType {
	for _, m := range c.markers {
		if strings.Contains(lesson, m.Marker) {
			return m.Type
		}
	}
	return LessonTypeUnknown
}

func (c *LessonTypeClassifier) Markers() []LessonTypeMarker {
	return append([]LessonTypeMarker(nil), c.markers...)
}

// ParseLessonTypeMarkers разбирает строку вида "Лк=Лекція,Пз=Практика" с сохранением порядка
func ParseLessonTypeMarkers(str string) ([]LessonTypeMarker, error) {
	var markers []LessonTypeMarker
	for _, pair := range strings.Split(str, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid lesson type marker: %q", pair)
		}
		markers = append(markers, LessonTypeMarker{
			Marker: strings.TrimSpace(parts[0]),
			Type:   LessonType(strings.TrimSpace(parts[1])),
		})
	}
	return markers, nil
}
