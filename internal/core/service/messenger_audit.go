package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/metrics"
	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

// AuditedMessenger decorates a Messenger with best-effort outbound audit
// logging. Sends are never blocked or failed by the audit write; read
// receipts are not audited.
type AuditedMessenger struct {
	next    ports.Messenger
	msgLog  ports.MessageLogRepository
	timeout time.Duration
	log     zerolog.Logger
}

func NewAuditedMessenger(next ports.Messenger, msgLog ports.MessageLogRepository, timeout time.Duration, log zerolog.Logger) *AuditedMessenger {
	if timeout <= 0 {
		timeout = DefaultGuardTimeout
	}
	return &AuditedMessenger{next: next, msgLog: msgLog, timeout: timeout, log: log}
}

func (m *AuditedMessenger) SendText(ctx context.Context, to, body string) error {
	if err := m.next.SendText(ctx, to, body); err != nil {
		return err
	}
	m.audit(ctx, to, "text", body)
	return nil
}

func (m *AuditedMessenger) SendButtons(ctx context.Context, to, body string, buttons []ports.Button) error {
	if err := m.next.SendButtons(ctx, to, body, buttons); err != nil {
		return err
	}
	m.audit(ctx, to, "interactive", body)
	return nil
}

func (m *AuditedMessenger) SendList(ctx context.Context, to, body, buttonLabel string, sections []ports.ListSection) error {
	if err := m.next.SendList(ctx, to, body, buttonLabel, sections); err != nil {
		return err
	}
	m.audit(ctx, to, "interactive", body)
	return nil
}

func (m *AuditedMessenger) MarkRead(ctx context.Context, messageID string) error {
	return m.next.MarkRead(ctx, messageID)
}

func (m *AuditedMessenger) audit(ctx context.Context, to, kind, body string) {
	res := Guard(ctx, m.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.msgLog.Insert(ctx, &domain.MessageLog{
			Phone:     domain.NormalizePhone(to),
			Direction: "out",
			Type:      kind,
			Content:   body,
			CreatedAt: time.Now().UTC(),
		})
	})
	if !res.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("message_audit", res.Outcome.String()).Inc()
		m.log.Warn().Err(res.Err).Str("phone", to).Msg("outbound audit log failed")
	}
}
