package cist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"

	"github.com/suchimauz/cist-schedule-api/internal/config"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

// Формат параметра p задан CIST, менять нельзя
const timetableParamFormat = "778:201:2687770147176185:::201:P201_FIRST_DATE,P201_LAST_DATE,P201_GROUP,P201_POTOK:%s,%s,%s,0"

// ErrBodyTooLarge: страница больше лимита, обрезанную не разбираем
var ErrBodyTooLarge = errors.New("timetable body exceeds size limit")

type CistAdapter struct {
	client       *http.Client
	baseURL      string
	userAgent    string
	maxBodyBytes int64
	logger       out.LoggerPort
}

func NewCistAdapter(cfg *config.Config, logger out.LoggerPort) *CistAdapter {
	return &CistAdapter{
		client:       &http.Client{Timeout: cfg.Cist.Timeout},
		baseURL:      cfg.Cist.BaseURL,
		userAgent:    cfg.Cist.UserAgent,
		maxBodyBytes: cfg.Cist.MaxBodyBytes,
		logger:       logger,
	}
}

func TimetableParam(query domain.ScheduleQuery) string {
	return fmt.Sprintf(timetableParamFormat, query.StartDate, query.EndDate, query.GroupID)
}

func (a *CistAdapter) FetchTimetable(ctx context.Context, query domain.ScheduleQuery) (*domain.RawTimetable, error) {
	a.logger.Info("cist.timetable.fetch", out.LogFields{
		"groupId":   query.GroupID,
		"startDate": query.StartDate,
		"endDate":   query.EndDate,
	})

	url, err := nurl.Parse(a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cist base url: %w", err)
	}
	params := nurl.Values{}
	params.Set("p", TimetableParam(query))
	url.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cist request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("cist.timetable.fetch_failed", out.LogFields{
			"groupId": query.GroupID,
			"error":   err.Error(),
		})
		return nil, &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := a.readBody(resp.Body)
	if err != nil {
		a.logger.Error("cist.timetable.read_failed", out.LogFields{
			"groupId": query.GroupID,
			"error":   err.Error(),
		})
		return nil, &domain.TransportError{Err: err}
	}

	a.logger.Debug("cist.timetable.fetch_success", out.LogFields{
		"groupId": query.GroupID,
		"status":  resp.StatusCode,
		"bytes":   len(body),
	})

	return &domain.RawTimetable{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// readBody читает не больше maxBodyBytes, лишний байт означает превышение лимита
func (a *CistAdapter) readBody(body io.Reader) ([]byte, error) {
	if a.maxBodyBytes <= 0 {
		return io.ReadAll(body)
	}

	data, err := io.ReadAll(io.LimitReader(body, a.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > a.maxBodyBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, a.maxBodyBytes)
	}
	return data, nil
}
