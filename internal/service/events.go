package service

import (
	"context"
	"quizmaster_backend/pkg/logger"

	"go.uber.org/zap"
)

// EventPublisher 发布领域事件，实现见 pkg/events
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type payload map[string]interface{}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, interface{}) error { return nil }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// publish 失败只记录日志，不影响主流程
func publish(ctx context.Context, p EventPublisher, eventType string, data interface{}) {
	if err := p.Publish(context.WithoutCancel(ctx), eventType, data); err != nil {
		logger.Log.Warn("Failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
