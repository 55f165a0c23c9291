package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
	"github.com/nirmaanhq/chatbot-system/internal/core/replies"
)

// flowEngineStub records which users reached it.
type flowEngineStub struct {
	calls []*domain.User
	err   error
}

func (f *flowEngineStub) Handle(_ context.Context, user *domain.User, _ *domain.Session, _ ports.InboundMessage) error {
	f.calls = append(f.calls, user)
	return f.err
}

type dispatcherFixture struct {
	d        *Dispatcher
	users    *userRepoStub
	sessions *sessionStoreStub
	msgLog   *messageLogStub
	msgr     *messengerStub
	employee *flowEngineStub
	customer *flowEngineStub
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		users:    newUserRepoStub(),
		sessions: newSessionStoreStub(),
		msgLog:   &messageLogStub{},
		msgr:     &messengerStub{},
		employee: &flowEngineStub{},
		customer: &flowEngineStub{},
	}
	userSvc := NewUserService(f.users, zerolog.Nop())
	f.d = NewDispatcher(userSvc, f.sessions, f.msgLog, f.msgr, f.employee, f.customer, 200*time.Millisecond, zerolog.Nop())
	return f
}

func TestDispatcherRoutesByRole(t *testing.T) {
	f := newDispatcherFixture()
	f.users.users[testPhone] = &domain.User{ID: "user-1", Phone: testPhone, Role: domain.RoleEmployee, Verified: true}

	f.d.Handle(context.Background(), textMsg("hello"))

	if len(f.employee.calls) != 1 || len(f.customer.calls) != 0 {
		t.Fatalf("employee got %d calls, customer %d", len(f.employee.calls), len(f.customer.calls))
	}
	if len(f.msgr.Marked) != 1 {
		t.Fatal("message not marked read")
	}
	if len(f.msgLog.entries) != 1 || f.msgLog.entries[0].Direction != "in" {
		t.Fatal("inbound message not audited")
	}
}

func TestDispatcherCreatesCustomerOnFirstContact(t *testing.T) {
	f := newDispatcherFixture()

	f.d.Handle(context.Background(), textMsg("hi"))

	if len(f.customer.calls) != 1 {
		t.Fatal("unknown sender not routed to customer flow")
	}
	user := f.customer.calls[0]
	if user.Role != domain.RoleCustomer || !user.Verified {
		t.Fatalf("first-contact user not an auto-verified customer: %+v", user)
	}
	if _, ok := f.users.users[testPhone]; !ok {
		t.Fatal("user not persisted")
	}
	if _, ok := f.sessions.sessions[testPhone]; !ok {
		t.Fatal("session not created")
	}
}

func TestDispatcherDegradedModeKeepsAnswering(t *testing.T) {
	f := newDispatcherFixture()
	f.users.findErr = errors.New("mongo down")

	f.d.Handle(context.Background(), textMsg("hi"))

	// The message is still handled, with a transient customer identity.
	if len(f.customer.calls) != 1 {
		t.Fatal("degraded dispatch dropped the message")
	}
	user := f.customer.calls[0]
	if !strings.HasPrefix(user.ID, "mem:") || user.Role != domain.RoleCustomer {
		t.Fatalf("expected transient identity, got %+v", user)
	}
	// Nothing durable is attempted while identity is unresolved.
	if len(f.msgLog.entries) != 0 {
		t.Fatal("audit attempted in degraded mode")
	}
	if len(f.sessions.sessions) != 0 {
		t.Fatal("session persisted in degraded mode")
	}
}

func TestDispatcherApologizesOnFlowError(t *testing.T) {
	f := newDispatcherFixture()
	f.customer.err = errors.New("handler exploded")

	f.d.Handle(context.Background(), textMsg("hi"))

	if got := f.msgr.lastText(); got != replies.CustomerApology {
		t.Fatalf("expected customer apology, got %q", got)
	}
}

func TestDispatcherApologizesInGujaratiForEmployees(t *testing.T) {
	f := newDispatcherFixture()
	f.users.users[testPhone] = &domain.User{ID: "user-1", Phone: testPhone, Role: domain.RoleEmployee, Verified: true}
	f.employee.err = errors.New("handler exploded")

	f.d.Handle(context.Background(), textMsg("hi"))

	if got := f.msgr.lastText(); got != replies.EmployeeApology {
		t.Fatalf("expected employee apology, got %q", got)
	}
}

func TestDispatcherRecoversFromPanic(t *testing.T) {
	f := newDispatcherFixture()
	f.d.customer = panickyFlow{}

	// Must not propagate; the worker goroutine has no other safety net.
	f.d.Handle(context.Background(), textMsg("hi"))

	if got := f.msgr.lastText(); got != replies.CustomerApology {
		t.Fatalf("expected apology after panic, got %q", got)
	}
}

type panickyFlow struct{}

func (panickyFlow) Handle(context.Context, *domain.User, *domain.Session, ports.InboundMessage) error {
	panic("boom")
}

func TestDispatcherNormalizesSenderPhone(t *testing.T) {
	f := newDispatcherFixture()

	msg := textMsg("hi")
	msg.From = "98765 43210" // bare 10-digit local format

	f.d.Handle(context.Background(), msg)

	if _, ok := f.users.users["+919876543210"]; !ok {
		t.Fatalf("phone not normalized before lookup, users: %v", f.users.users)
	}
}
