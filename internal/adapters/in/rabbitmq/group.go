package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/cist-schedule-api/internal/core/domain"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

type GroupCacheMessage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (l *CacheHitListener) processGroupMessage(ctx context.Context, routingKey CacheMessageRoutingKey, msg amqp.Delivery) error {
	if routingKey.CacheHitType != CacheHitTypeInvalidate {
		return nil
	}

	var msgJson GroupCacheMessage
	if err := json.Unmarshal(msg.Body, &msgJson); err != nil {
		return fmt.Errorf("invalid group message: %w", err)
	}

	// id приоритетнее имени: группу могли переименовать в справочнике
	switch {
	case msgJson.ID != "":
		l.useCase.InvalidateGroupIDCache(ctx, msgJson.ID)
	case msgJson.Name != "":
		if err := l.useCase.InvalidateGroupCache(ctx, msgJson.Name); err != nil {
			if errors.Is(err, domain.ErrGroupNotFound) {
				l.logger.Warn("group.message.unknown", out.LogFields{
					"name": msgJson.Name,
				})
				return nil
			}
			return err
		}
	default:
		return errors.New("group message has neither id nor name")
	}

	l.logger.Info("group.message.invalidated", out.LogFields{
		"source": routingKey.Source,
		"id":     msgJson.ID,
		"name":   msgJson.Name,
	})

	return nil
}
