package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

type sinkStub struct {
	events []ports.InboundMessage
}

func (s *sinkStub) Enqueue(msg ports.InboundMessage) {
	s.events = append(s.events, msg)
}

const samplePayload = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "123",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [{
          "id": "wamid.abc",
          "from": "919876543210",
          "timestamp": "1756710000",
          "type": "text",
          "text": {"body": "hello"}
        }]
      }
    }]
  }]
}`

func newWebhookFixture(appSecret string) (*WebhookHandler, *sinkStub) {
	sink := &sinkStub{}
	h := NewWebhookHandler(sink, "verify-me", appSecret, zerolog.Nop())
	return h, sink
}

func TestWebhookVerifyHandshake(t *testing.T) {
	h, _ := newWebhookFixture("")
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/v1/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=42", nil)
	rec := httptest.NewRecorder()
	if err := h.Verify(e.NewContext(req, rec)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "42" {
		t.Fatalf("got %d %q, want 200 with challenge echoed", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil)
	rec = httptest.NewRecorder()
	if err := h.Verify(e.NewContext(req, rec)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong token got %d, want 403", rec.Code)
	}
}

func TestWebhookReceiveParsesTextMessage(t *testing.T) {
	h, sink := newWebhookFixture("")
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(samplePayload))
	rec := httptest.NewRecorder()
	if err := h.Receive(e.NewContext(req, rec)); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.MessageID != "wamid.abc" || ev.From != "919876543210" || ev.Text != "hello" || ev.Type != "text" {
		t.Fatalf("wrong event: %+v", ev)
	}
	if ev.Timestamp.Unix() != 1756710000 {
		t.Fatalf("timestamp not parsed: %v", ev.Timestamp)
	}
}

func TestWebhookReceiveParsesInteractiveAndImage(t *testing.T) {
	payload := `{"entry":[{"changes":[{"field":"messages","value":{"messages":[
	  {"id":"wamid.1","from":"919876543210","timestamp":"1756710000","type":"interactive",
	   "interactive":{"type":"list_reply","list_reply":{"id":"menu_log_activity","title":"Log"}}},
	  {"id":"wamid.2","from":"919876543210","timestamp":"1756710001","type":"image",
	   "image":{"id":"media-77","mime_type":"image/jpeg"}}
	]}}]}]}`

	h, sink := newWebhookFixture("")
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	if err := h.Receive(e.NewContext(req, rec)); err != nil {
		t.Fatalf("receive: %v", err)
	}

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].ListID != "menu_log_activity" {
		t.Fatalf("list reply not mapped: %+v", sink.events[0])
	}
	if sink.events[1].ImageID != "media-77" || sink.events[1].ImageMime != "image/jpeg" {
		t.Fatalf("image not mapped: %+v", sink.events[1])
	}
}

func TestWebhookReceiveSignatureCheck(t *testing.T) {
	const secret = "app-secret"
	h, sink := newWebhookFixture(secret)
	e := echo.New()

	// Valid signature passes.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(samplePayload))
	sig := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(samplePayload))
	req.Header.Set(signatureHeader, sig)
	rec := httptest.NewRecorder()
	if err := h.Receive(e.NewContext(req, rec)); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if rec.Code != http.StatusOK || len(sink.events) != 1 {
		t.Fatalf("valid signature rejected: %d", rec.Code)
	}

	// Tampered signature is refused before any parsing.
	req = httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(samplePayload))
	req.Header.Set(signatureHeader, "sha256=deadbeef")
	rec = httptest.NewRecorder()
	if err := h.Receive(e.NewContext(req, rec)); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if rec.Code != http.StatusForbidden || len(sink.events) != 1 {
		t.Fatalf("bad signature accepted: %d", rec.Code)
	}
}

func TestWebhookReceiveAcksMalformedPayload(t *testing.T) {
	h, sink := newWebhookFixture("")
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	if err := h.Receive(e.NewContext(req, rec)); err != nil {
		t.Fatalf("receive: %v", err)
	}
	// Acked so the platform does not retry a payload that can never parse.
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if len(sink.events) != 0 {
		t.Fatal("malformed payload produced events")
	}
}

func TestWebhookReceiveIgnoresStatusOnlyChanges(t *testing.T) {
	payload := `{"entry":[{"changes":[{"field":"messages","value":{"statuses":[{"id":"wamid.x","status":"delivered"}]}}]}]}`

	h, sink := newWebhookFixture("")
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhook", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	if err := h.Receive(e.NewContext(req, rec)); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(sink.events) != 0 {
		t.Fatal("status update produced events")
	}
}
