package domain

// RawTimetable это ответ CIST до разбора, с любым HTTP-статусом
type RawTimetable struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
