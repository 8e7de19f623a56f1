package rabbitmq

import (
	"context"

	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

func (l *CacheHitListener) processAllMessage(ctx context.Context, routingKey CacheMessageRoutingKey) error {
	if routingKey.CacheHitType != CacheHitTypeInvalidate {
		return nil
	}

	l.useCase.InvalidateAllCache(ctx)

	l.logger.Info("_all_.message.invalidated", out.LogFields{
		"source":         routingKey.Source,
		"schedule_cache": true,
	})

	return nil
}
