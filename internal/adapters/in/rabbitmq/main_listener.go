package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/cist-schedule-api/internal/config"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/in"
	"github.com/suchimauz/cist-schedule-api/internal/core/ports/out"
)

type CacheHitListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.ScheduleUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

type (
	CacheHitType         string
	CacheHitResourceType string
)

type CacheMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType CacheHitResourceType
	CacheHitType CacheHitType
}

const (
	CacheHitResourceTypeAll   CacheHitResourceType = "_all_"
	CacheHitResourceTypeGroup CacheHitResourceType = "group"
)

const (
	CacheHitTypeInvalidate CacheHitType = "invalidate"
)

func NewCacheHitListener(useCase in.ScheduleUseCase, cfg *config.Config, logger out.LoggerPort) (*CacheHitListener, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &CacheHitListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *CacheHitListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.Queue,
		true,  // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMQ.Bind,
		l.cfg.RabbitMQ.Exchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	consumerTag := "cist-schedule-svc-" + uuid.New().String()
	msgs, err := l.channel.Consume(
		queue.Name,
		consumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	l.logger.Info("rabbitmq.queue.started", out.LogFields{
		"queue":       queue.Name,
		"bind":        l.cfg.RabbitMQ.Bind,
		"exchange":    l.cfg.RabbitMQ.Exchange,
		"consumerTag": consumerTag,
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					l.logger.Warn("rabbitmq.queue.closed", out.LogFields{
						"queue": queue.Name,
					})
					return
				}
				if err := l.processMessage(ctx, msg); err != nil {
					l.logger.Error("rabbitmq.message.rejected", out.LogFields{
						"routingKey": msg.RoutingKey,
						"error":      err.Error(),
					})
					// Битое сообщение не станет валидным при повторной доставке
					msg.Nack(false, false)
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	return nil
}

func (l *CacheHitListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

func (l *CacheHitListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	routingKey, err := parseCacheMessageRoutingKey(msg.RoutingKey)
	if err != nil {
		return err
	}

	switch routingKey.ResourceType {
	case CacheHitResourceTypeGroup:
		return l.processGroupMessage(ctx, routingKey, msg)
	case CacheHitResourceTypeAll:
		return l.processAllMessage(ctx, routingKey)
	default:
		l.logger.Debug("rabbitmq.message.skipped", out.LogFields{
			"routingKey": msg.RoutingKey,
		})
		return nil
	}
}

// Пример routingKey:
// deanery.cist-schedule-svc.group.invalidate
// deanery.cist-schedule-svc._all_.invalidate
func parseCacheMessageRoutingKey(routingKey string) (CacheMessageRoutingKey, error) {
	parts := strings.Split(routingKey, ".")

	if len(parts) != 4 {
		return CacheMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return CacheMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: CacheHitResourceType(parts[2]),
		CacheHitType: CacheHitType(parts[3]),
	}, nil
}
