package rabbitmq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/suchimauz/cist-schedule-api/internal/adapters/out/logger"
	"github.com/suchimauz/cist-schedule-api/internal/config"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
)

type mockUseCase struct {
	knownGroups map[string]bool

	invalidatedNames []string
	invalidatedIDs   []string
	allCalls         int
}

func (m *mockUseCase) GetSchedule(_ context.Context, _, _, _ string) (*domain.WeekSchedule, error) {
	return nil, nil
}
func (m *mockUseCase) GroupNames() []string { return nil }
func (m *mockUseCase) InvalidateGroupCache(_ context.Context, groupName string) error {
	if !m.knownGroups[groupName] {
		return domain.ErrGroupNotFound
	}
	m.invalidatedNames = append(m.invalidatedNames, groupName)
	return nil
}
func (m *mockUseCase) InvalidateGroupIDCache(_ context.Context, groupID string) {
	m.invalidatedIDs = append(m.invalidatedIDs, groupID)
}
func (m *mockUseCase) InvalidateAllCache(_ context.Context) {
	m.allCalls++
}

func newTestListener(useCase *mockUseCase) *CacheHitListener {
	return &CacheHitListener{
		useCase: useCase,
		logger:  logger.NewNopLogger(),
	}
}

func TestParseCacheMessageRoutingKey(t *testing.T) {
	key, err := parseCacheMessageRoutingKey("deanery.cist-schedule-svc.group.invalidate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Source != "deanery" || key.Receiver != "cist-schedule-svc" ||
		key.ResourceType != CacheHitResourceTypeGroup || key.CacheHitType != CacheHitTypeInvalidate {
		t.Errorf("unexpected key %+v", key)
	}

	for _, invalid := range []string{"", "a.b.c", "a.b.c.d.e"} {
		if _, err := parseCacheMessageRoutingKey(invalid); err == nil {
			t.Errorf("expected error for %q", invalid)
		}
	}
}

func TestProcessMessage(t *testing.T) {
	tests := []struct {
		name       string
		routingKey string
		body       string
		wantErr    bool
		wantIDs    int
		wantNames  int
		wantAll    int
	}{
		{
			name:       "group by id",
			routingKey: "deanery.cist-schedule-svc.group.invalidate",
			body:       `{"id":"10887235","name":"ПЗПІ-22-1"}`,
			wantIDs:    1,
		},
		{
			name:       "group by name",
			routingKey: "deanery.cist-schedule-svc.group.invalidate",
			body:       `{"name":"ПЗПІ-22-1"}`,
			wantNames:  1,
		},
		{
			name:       "unknown group name is acknowledged",
			routingKey: "deanery.cist-schedule-svc.group.invalidate",
			body:       `{"name":"Нема"}`,
		},
		{
			name:       "empty group message",
			routingKey: "deanery.cist-schedule-svc.group.invalidate",
			body:       `{}`,
			wantErr:    true,
		},
		{
			name:       "broken json",
			routingKey: "deanery.cist-schedule-svc.group.invalidate",
			body:       `{`,
			wantErr:    true,
		},
		{
			name:       "group store is ignored",
			routingKey: "deanery.cist-schedule-svc.group.store",
			body:       `{"id":"1"}`,
		},
		{
			name:       "all",
			routingKey: "deanery.cist-schedule-svc._all_.invalidate",
			wantAll:    1,
		},
		{
			name:       "unknown resource",
			routingKey: "deanery.cist-schedule-svc.auditory.invalidate",
		},
		{
			name:       "invalid routing key",
			routingKey: "group.invalidate",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := &mockUseCase{knownGroups: map[string]bool{"ПЗПІ-22-1": true}}
			listener := newTestListener(useCase)

			err := listener.processMessage(context.Background(), amqp.Delivery{
				RoutingKey: tt.routingKey,
				Body:       []byte(tt.body),
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if len(useCase.invalidatedIDs) != tt.wantIDs {
				t.Errorf("expected %d id invalidations, got %v", tt.wantIDs, useCase.invalidatedIDs)
			}
			if len(useCase.invalidatedNames) != tt.wantNames {
				t.Errorf("expected %d name invalidations, got %v", tt.wantNames, useCase.invalidatedNames)
			}
			if useCase.allCalls != tt.wantAll {
				t.Errorf("expected %d full invalidations, got %d", tt.wantAll, useCase.allCalls)
			}
		})
	}
}

func TestNewCacheHitListener_Disabled(t *testing.T) {
	cfg := &config.Config{}

	listener, err := NewCacheHitListener(&mockUseCase{}, cfg, logger.NewNopLogger())
	if err != nil || listener != nil {
		t.Fatalf("expected nil listener without error, got %v, %v", listener, err)
	}
	// Stop на nil-слушателе безопасен
	if err := listener.Stop(); err != nil {
		t.Errorf("unexpected stop error: %v", err)
	}
}
