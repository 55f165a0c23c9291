package service

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/metrics"
	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
	"github.com/nirmaanhq/chatbot-system/internal/core/replies"
)

// DefaultGuardTimeout bounds each guarded persistence call made while
// dispatching one inbound event.
const DefaultGuardTimeout = 2500 * time.Millisecond

// Dispatcher is the top-level entry point for one inbound message event. It
// resolves the acting identity and session (degrading to transient in-memory
// values when the store is unreachable), routes to the role's flow engine,
// and guarantees the user gets an answer even on internal failure. The
// webhook acknowledgement has already been sent before Handle runs, so no
// error may escape it.
type Dispatcher struct {
	users     *UserService
	sessions  ports.SessionStore
	msgLog    ports.MessageLogRepository
	messenger ports.Messenger
	employee  ports.FlowEngine
	customer  ports.FlowEngine
	timeout   time.Duration
	log       zerolog.Logger
}

func NewDispatcher(
	users *UserService,
	sessions ports.SessionStore,
	msgLog ports.MessageLogRepository,
	messenger ports.Messenger,
	employee ports.FlowEngine,
	customer ports.FlowEngine,
	timeout time.Duration,
	log zerolog.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultGuardTimeout
	}
	return &Dispatcher{
		users:     users,
		sessions:  sessions,
		msgLog:    msgLog,
		messenger: messenger,
		employee:  employee,
		customer:  customer,
		timeout:   timeout,
		log:       log,
	}
}

// Handle processes one inbound event, exactly once, terminally. Each event is
// an independent unit of work; the caller (worker pool) serializes events per
// phone.
func (d *Dispatcher) Handle(ctx context.Context, msg ports.InboundMessage) {
	started := time.Now()
	phone := domain.NormalizePhone(msg.From)
	logger := d.log.With().Str("phone", phone).Str("message_id", msg.MessageID).Logger()

	// Role defaults to customer until the identity resolves, so the panic
	// boundary can still pick an apology locale.
	user := domain.NewTransientUser(phone)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("dispatch panicked")
			metrics.DispatchFaultsTotal.Inc()
			d.apologize(ctx, user)
		}
		metrics.MessagesProcessedTotal.WithLabelValues(string(user.Role)).Inc()
		metrics.MessageProcessingDuration.WithLabelValues(string(user.Role)).Observe(time.Since(started).Seconds())
	}()

	// Read receipt is requested regardless of persistence availability.
	if err := d.messenger.MarkRead(ctx, msg.MessageID); err != nil {
		logger.Warn().Err(err).Msg("mark read failed")
	}

	persisted := true
	ures := Guard(ctx, d.timeout, func(ctx context.Context) (*domain.User, error) {
		return d.users.GetOrCreate(ctx, phone)
	})
	if ures.OK() {
		user = ures.Value
	} else {
		persisted = false
		metrics.GuardDegradedTotal.WithLabelValues("user_resolve", ures.Outcome.String()).Inc()
		logger.Warn().Err(ures.Err).Str("outcome", ures.Outcome.String()).Msg("user store unavailable, degraded mode")
	}

	session := domain.NewSession(phone)
	if persisted {
		sres := Guard(ctx, d.timeout, func(ctx context.Context) (*domain.Session, error) {
			return d.getOrCreateSession(ctx, phone)
		})
		if sres.OK() {
			session = sres.Value
		} else {
			metrics.GuardDegradedTotal.WithLabelValues("session_resolve", sres.Outcome.String()).Inc()
			logger.Warn().Err(sres.Err).Str("outcome", sres.Outcome.String()).Msg("session store unavailable, transient session")
		}

		d.auditInbound(ctx, phone, msg, logger)
	}

	var err error
	if user.Role == domain.RoleEmployee {
		err = d.employee.Handle(ctx, user, session, msg)
	} else {
		err = d.customer.Handle(ctx, user, session, msg)
	}
	if err != nil {
		// The session is deliberately left untouched so the user can retry
		// the same step.
		logger.Error().Err(err).Str("intent", string(session.Intent)).Str("step", string(session.Step)).Msg("flow handling failed")
		metrics.DispatchFaultsTotal.Inc()
		d.apologize(ctx, user)
	}
}

// getOrCreateSession loads the active session for phone, lazily creating an
// empty one on first contact.
func (d *Dispatcher) getOrCreateSession(ctx context.Context, phone string) (*domain.Session, error) {
	session, err := d.sessions.Get(ctx, phone)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, err
	}
	session = domain.NewSession(phone)
	if err := d.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// auditInbound appends the inbound message to the durable log, best-effort.
func (d *Dispatcher) auditInbound(ctx context.Context, phone string, msg ports.InboundMessage, logger zerolog.Logger) {
	res := Guard(ctx, d.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.msgLog.Insert(ctx, &domain.MessageLog{
			Phone:     phone,
			Direction: "in",
			Type:      msg.Type,
			Content:   msg.Content(),
			CreatedAt: time.Now().UTC(),
		})
	})
	if !res.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("message_audit", res.Outcome.String()).Inc()
		logger.Warn().Err(res.Err).Msg("inbound audit log failed")
	}
}

// apologize sends a single localized error message, best-effort.
func (d *Dispatcher) apologize(ctx context.Context, user *domain.User) {
	body := replies.CustomerApology
	if user.Role == domain.RoleEmployee {
		body = replies.EmployeeApology
	}
	if err := d.messenger.SendText(ctx, user.Phone, body); err != nil {
		d.log.Warn().Err(err).Str("phone", user.Phone).Msg("apology send failed")
	}
}
