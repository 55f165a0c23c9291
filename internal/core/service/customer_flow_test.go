package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/replies"
)

type customerFixture struct {
	flow     *CustomerFlow
	sessions *sessionStoreStub
	records  *recordRepoStub
	msgr     *messengerStub
}

func newCustomerFixture() *customerFixture {
	f := &customerFixture{
		sessions: newSessionStoreStub(),
		records:  &recordRepoStub{},
		msgr:     &messengerStub{},
	}
	f.flow = NewCustomerFlow(f.sessions, f.records, f.msgr, DefaultGuardTimeout, zerolog.Nop())
	return f
}

func customer() *domain.User {
	return &domain.User{ID: "user-9", Phone: testPhone, Role: domain.RoleCustomer, Verified: true}
}

func (f *customerFixture) handle(t *testing.T, user *domain.User, sess *domain.Session, body string) {
	t.Helper()
	if err := f.flow.Handle(context.Background(), user, sess, textMsg(body)); err != nil {
		t.Fatalf("handle %q: %v", body, err)
	}
}

func TestCustomerBookingEndToEnd(t *testing.T) {
	f := newCustomerFixture()
	user := customer()
	sess := domain.NewSession(testPhone)

	f.handle(t, user, sess, "hi")
	if len(f.msgr.Lists) == 0 {
		t.Fatal("greeting did not show the menu")
	}

	f.handle(t, user, sess, replies.MenuBooking)
	if sess.Intent != domain.IntentBooking || sess.Step != domain.StepCollectName {
		t.Fatalf("booking not started: intent=%q step=%q", sess.Intent, sess.Step)
	}

	f.handle(t, user, sess, "Ravi Patel")
	date := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
	f.handle(t, user, sess, date)
	f.handle(t, user, sess, "14:30")

	if len(f.records.bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(f.records.bookings))
	}
	rec := f.records.bookings[0]
	if rec.Name != "Ravi Patel" || rec.Date != date || rec.Time != "14:30" {
		t.Fatalf("wrong booking: %+v", rec)
	}
	if rec.Status != domain.BookingStatusPending {
		t.Fatalf("wrong status: %q", rec.Status)
	}
	if sess.Intent != domain.IntentNone || sess.Step != domain.StepNone {
		t.Fatal("session not cleared after confirmation")
	}
	if got := f.msgr.lastText(); !strings.Contains(got, "14:30") || !strings.Contains(got, "ref ") {
		t.Fatalf("confirmation missing details: %q", got)
	}
}

func TestCustomerBookingInvalidInputNeverAdvances(t *testing.T) {
	f := newCustomerFixture()
	user := customer()
	sess := domain.NewSession(testPhone)
	sess.Begin(domain.IntentBooking)

	f.handle(t, user, sess, "R")
	if sess.Step != domain.StepCollectName {
		t.Fatalf("one-letter name advanced to %q", sess.Step)
	}

	f.handle(t, user, sess, "Ravi")
	f.handle(t, user, sess, "yesterday")
	if sess.Step != domain.StepCollectDate {
		t.Fatalf("nonsense date advanced to %q", sess.Step)
	}
	past := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02")
	f.handle(t, user, sess, past)
	if sess.Step != domain.StepCollectDate {
		t.Fatalf("past date advanced to %q", sess.Step)
	}

	future := time.Now().UTC().Add(72 * time.Hour).Format("2006-01-02")
	f.handle(t, user, sess, future)
	f.handle(t, user, sess, "25:99")
	if sess.Step != domain.StepCollectTime {
		t.Fatalf("invalid time advanced to %q", sess.Step)
	}
}

func TestCustomerSaveFailureKeepsSession(t *testing.T) {
	f := newCustomerFixture()
	f.records.insertErr = errors.New("mongo down")
	user := customer()
	sess := domain.NewSession(testPhone)
	sess.Begin(domain.IntentBooking)

	f.handle(t, user, sess, "Ravi")
	f.handle(t, user, sess, time.Now().UTC().Add(48*time.Hour).Format("2006-01-02"))
	f.handle(t, user, sess, "10:00")

	if got := f.msgr.lastText(); got != replies.CustomerSaveFailed {
		t.Fatalf("expected save-failed text, got %q", got)
	}
	if sess.Intent != domain.IntentBooking || sess.Step != domain.StepCollectTime {
		t.Fatalf("session was touched: intent=%q step=%q", sess.Intent, sess.Step)
	}
}

func TestCustomerMenuInfoOptions(t *testing.T) {
	f := newCustomerFixture()
	user := customer()
	sess := domain.NewSession(testPhone)

	f.handle(t, user, sess, "2")
	if got := f.msgr.lastText(); got != replies.AvailabilityInfo {
		t.Fatalf("expected availability info, got %q", got)
	}
	f.handle(t, user, sess, "3")
	if got := f.msgr.lastText(); got != replies.PricingInfo {
		t.Fatalf("expected pricing info, got %q", got)
	}
	f.handle(t, user, sess, "sales")
	if got := f.msgr.lastText(); got != replies.SalesConnect {
		t.Fatalf("expected sales handoff, got %q", got)
	}
	if sess.Intent != domain.IntentNone {
		t.Fatal("info options must not start a flow")
	}
}

func TestParseVisitDate(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2026-09-02", "2026-09-02", true},
		{"02/09/2026", "2026-09-02", true},
		{"2026-09-01", "", false}, // today is not bookable
		{"2026-08-31", "", false},
		{"2026-02-30", "", false},
		{"tomorrow", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseVisitDate(tc.in, now)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseVisitDate(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFormatVisitDate(t *testing.T) {
	if got := formatVisitDate("2026-09-07"); got != "Monday, 07 Sep 2026" {
		t.Fatalf("formatVisitDate = %q", got)
	}
	// Unparseable input falls through untouched.
	if got := formatVisitDate("soon"); got != "soon" {
		t.Fatalf("formatVisitDate fallback = %q", got)
	}
}
