package cist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/logger"
	"github.com/suchimauz/cist-schedule-api/internal/config"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

func newTestAdapter(baseURL string, timeout time.Duration) *CistAdapter {
	cfg := &config.Config{}
	cfg.Cist.BaseURL = baseURL
	cfg.Cist.UserAgent = "Mozilla/5.0 test"
	cfg.Cist.Timeout = timeout
	cfg.Cist.MaxBodyBytes = 1 << 20
	return NewCistAdapter(cfg, logger.NewNopLogger())
}

func TestTimetableParam(t *testing.T) {
	got := TimetableParam(domain.ScheduleQuery{GroupID: "10887181", StartDate: "01.09.2024", EndDate: "31.01.2025"})
	want := "778:201:2687770147176185:::201:P201_FIRST_DATE,P201_LAST_DATE,P201_GROUP,P201_POTOK:01.09.2024,31.01.2025,10887181,0"
	if got != want {
		t.Errorf("TimetableParam() = %q, want %q", got, want)
	}
}

func TestCistAdapter_FetchTimetable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "Mozilla/5.0 test" {
			t.Errorf("unexpected user agent %q", ua)
		}
		want := "778:201:2687770147176185:::201:P201_FIRST_DATE,P201_LAST_DATE,P201_GROUP,P201_POTOK:01.09.2024,31.01.2025,42,0"
		if p := r.URL.Query().Get("p"); p != want {
			t.Errorf("unexpected p param %q", p)
		}
		w.Header().Set("Content-Type", "text/html; charset=windows-1251")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	raw, err := newTestAdapter(server.URL, time.Second).FetchTimetable(context.Background(), domain.ScheduleQuery{
		GroupID:   "42",
		StartDate: "01.09.2024",
		EndDate:   "31.01.2025",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", raw.StatusCode)
	}
	if raw.ContentType != "text/html; charset=windows-1251" {
		t.Errorf("unexpected content type %q", raw.ContentType)
	}
	if string(raw.Body) != "<html></html>" {
		t.Errorf("unexpected body %q", raw.Body)
	}
}

func TestCistAdapter_FetchTimetable_NonOKIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	raw, err := newTestAdapter(server.URL, time.Second).FetchTimetable(context.Background(), domain.ScheduleQuery{GroupID: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", raw.StatusCode)
	}
}

func TestCistAdapter_FetchTimetable_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestAdapter(url, time.Second).FetchTimetable(context.Background(), domain.ScheduleQuery{GroupID: "1"})

	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestCistAdapter_FetchTimetable_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := newTestAdapter(server.URL, 50*time.Millisecond).FetchTimetable(context.Background(), domain.ScheduleQuery{GroupID: "1"})

	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError on timeout, got %v", err)
	}
}

func TestCistAdapter_FetchTimetable_BodyLimit(t *testing.T) {
	page := "<html><body><table class=\"MainTT\">" + strings.Repeat("<tr><td></td><td>7:45</td><td>Лк</td></tr>", 100) + "</table></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{name: "over limit", limit: int64(len(page) / 2), wantErr: true},
		{name: "exactly at limit", limit: int64(len(page))},
		{name: "no limit", limit: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestAdapter(server.URL, time.Second)
			adapter.maxBodyBytes = tt.limit

			raw, err := adapter.FetchTimetable(context.Background(), domain.ScheduleQuery{GroupID: "1"})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if string(raw.Body) != page {
					t.Errorf("expected full body, got %d bytes", len(raw.Body))
				}
				return
			}

			var transportErr *domain.TransportError
			if !errors.As(err, &transportErr) || !errors.Is(err, ErrBodyTooLarge) {
				t.Fatalf("expected TransportError wrapping ErrBodyTooLarge, got %v", err)
			}
			if raw != nil {
				t.Errorf("expected no partial timetable")
			}
		})
	}
}
