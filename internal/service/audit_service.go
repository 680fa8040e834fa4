package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/article-platform/internal/events"
)

// AuditService writes a structured audit trail for security-relevant
// domain events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to audited events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.log)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.log)
	a.dispatcher.Subscribe(events.EventTokenRevoked, a.log)
	a.dispatcher.Subscribe(events.EventArticleCreated, a.log)
	a.dispatcher.Subscribe(events.EventArticleVoted, a.log)
	a.dispatcher.Subscribe(events.EventCommentAdded, a.log)
}

func (a *AuditService) log(_ context.Context, event events.Event) error {
	a.logger.Info("audit",
		zap.String("event", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload),
	)
	return nil
}
