package service

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/metrics"
	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
	"github.com/nirmaanhq/chatbot-system/internal/core/replies"
)

var visitTimeRe = regexp.MustCompile(`^(?:[01]?\d|2[0-3]):[0-5]\d$`)

var visitDateLayouts = []string{"2006-01-02", "02/01/2006"}

// CustomerFlow is the customer-side conversation state machine: main menu
// plus the site-visit booking flow. Customers are auto-verified at creation,
// so there is no gate. All prompts are English.
type CustomerFlow struct {
	sessions  ports.SessionStore
	records   ports.RecordRepository
	messenger ports.Messenger
	timeout   time.Duration
	log       zerolog.Logger
}

func NewCustomerFlow(sessions ports.SessionStore, records ports.RecordRepository, messenger ports.Messenger, timeout time.Duration, log zerolog.Logger) *CustomerFlow {
	if timeout <= 0 {
		timeout = DefaultGuardTimeout
	}
	return &CustomerFlow{sessions: sessions, records: records, messenger: messenger, timeout: timeout, log: log}
}

// Handle advances the customer state machine by one inbound message.
func (f *CustomerFlow) Handle(ctx context.Context, user *domain.User, sess *domain.Session, msg ports.InboundMessage) error {
	text := strings.TrimSpace(msg.Content())
	lower := strings.ToLower(text)

	switch lower {
	case "menu", "hi", "hello", "start":
		sess.Clear()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		return f.sendMenu(ctx, user.Phone)
	case "help":
		f.send(ctx, user.Phone, replies.CustomerHelp)
		return nil
	}

	switch sess.Intent {
	case domain.IntentBooking:
		return f.handleBooking(ctx, user, sess, text, lower)
	default:
		return f.handleMenu(ctx, user, sess, lower)
	}
}

// handleMenu maps main-menu selections; unrecognized input redisplays the menu.
func (f *CustomerFlow) handleMenu(ctx context.Context, user *domain.User, sess *domain.Session, lower string) error {
	switch lower {
	case replies.MenuBooking, "1", "book", "booking":
		sess.Begin(domain.IntentBooking)
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptName)
		return nil
	case replies.MenuAvailability, "2":
		f.send(ctx, user.Phone, replies.AvailabilityInfo)
		return nil
	case replies.MenuPricing, "3":
		f.send(ctx, user.Phone, replies.PricingInfo)
		return nil
	case replies.MenuSales, "4", "sales":
		f.send(ctx, user.Phone, replies.SalesConnect)
		return nil
	default:
		return f.sendMenu(ctx, user.Phone)
	}
}

// handleBooking walks collect_name → collect_date → collect_time. Invalid
// input re-prompts without advancing.
func (f *CustomerFlow) handleBooking(ctx context.Context, user *domain.User, sess *domain.Session, text, lower string) error {
	switch sess.Step {
	case domain.StepCollectName:
		if utf8.RuneCountInString(text) < 2 {
			f.send(ctx, user.Phone, replies.InvalidName)
			return nil
		}
		sess.Booking.Name = text
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptDate)
		return nil

	case domain.StepCollectDate:
		date, ok := parseVisitDate(text, time.Now())
		if !ok {
			f.send(ctx, user.Phone, replies.InvalidDate)
			return nil
		}
		sess.Booking.Date = date
		sess.Advance()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		f.send(ctx, user.Phone, replies.PromptTime)
		return nil

	case domain.StepCollectTime:
		if !visitTimeRe.MatchString(text) {
			f.send(ctx, user.Phone, replies.InvalidTime)
			return nil
		}
		sess.Booking.Time = text
		return f.completeBooking(ctx, user, sess)

	default:
		sess.Clear()
		persistSession(ctx, f.sessions, f.timeout, sess, f.log)
		return f.sendMenu(ctx, user.Phone)
	}
}

func (f *CustomerFlow) completeBooking(ctx context.Context, user *domain.User, sess *domain.Session) error {
	rec := &domain.Booking{
		UserID:    user.ID,
		Phone:     user.Phone,
		Name:      sess.Booking.Name,
		Date:      sess.Booking.Date,
		Time:      sess.Booking.Time,
		Status:    domain.BookingStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	res := Guard(ctx, f.timeout, func(ctx context.Context) (string, error) {
		return f.records.InsertBooking(ctx, rec)
	})
	if !res.OK() {
		metrics.GuardDegradedTotal.WithLabelValues("booking_insert", res.Outcome.String()).Inc()
		f.log.Warn().Err(res.Err).Str("phone", user.Phone).Msg("booking insert degraded")
		// Session stays at collect_time so the user can retry.
		f.send(ctx, user.Phone, replies.CustomerSaveFailed)
		return nil
	}

	sess.Clear()
	persistSession(ctx, f.sessions, f.timeout, sess, f.log)
	f.log.Info().Str("phone", user.Phone).Str("booking_id", res.Value).Msg("booking created")
	f.send(ctx, user.Phone, replies.BookingConfirmed(formatVisitDate(rec.Date), rec.Time, idExcerpt(res.Value)))
	return nil
}

func (f *CustomerFlow) sendMenu(ctx context.Context, phone string) error {
	if err := f.messenger.SendList(ctx, phone, replies.CustomerMenuBody, replies.CustomerMenuButton, replies.CustomerMenuSections()); err != nil {
		f.log.Warn().Err(err).Str("phone", phone).Msg("menu send failed")
	}
	return nil
}

func (f *CustomerFlow) send(ctx context.Context, to, body string) {
	if err := f.messenger.SendText(ctx, to, body); err != nil {
		f.log.Warn().Err(err).Str("phone", to).Msg("send failed")
	}
}

// parseVisitDate accepts an ISO date or DD/MM/YYYY and requires a day after
// today. The canonical ISO form is returned.
func parseVisitDate(s string, now time.Time) (string, bool) {
	s = strings.TrimSpace(s)
	var parsed time.Time
	var err error
	for _, layout := range visitDateLayouts {
		parsed, err = time.Parse(layout, s)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !parsed.After(today) {
		return "", false
	}
	return parsed.Format("2006-01-02"), true
}

// formatVisitDate renders the confirmation date, e.g. "Monday, 02 Jan 2026".
func formatVisitDate(isoDate string) string {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format("Monday, 02 Jan 2006")
}
