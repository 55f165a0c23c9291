package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

const signatureHeader = "X-Hub-Signature-256"

// WebhookHandler terminates the messaging platform's webhook: the GET
// subscription handshake and POST event notifications. Events are
// acknowledged immediately and processed asynchronously through the sink.
type WebhookHandler struct {
	sink        ports.EventSink
	verifyToken string
	appSecret   string
	log         zerolog.Logger
}

func NewWebhookHandler(sink ports.EventSink, verifyToken, appSecret string, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		sink:        sink,
		verifyToken: verifyToken,
		appSecret:   appSecret,
		log:         log,
	}
}

// Verify handles the subscription handshake.
// GET /v1/webhook?hub.mode=subscribe&hub.verify_token=...&hub.challenge=...
func (h *WebhookHandler) Verify(c echo.Context) error {
	mode := c.QueryParam("hub.mode")
	token := c.QueryParam("hub.verify_token")
	challenge := c.QueryParam("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		h.log.Warn().Str("mode", mode).Msg("webhook verification rejected")
		return c.NoContent(http.StatusForbidden)
	}

	return c.String(http.StatusOK, challenge)
}

// Receive handles event notifications.
// POST /v1/webhook
//
// The platform retries deliveries that are not acknowledged quickly, so the
// handler returns 200 as soon as events are enqueued. Malformed payloads are
// also acknowledged: a retry would fail identically and only amplify load.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	if h.appSecret != "" && !h.validSignature(c.Request().Header.Get(signatureHeader), body) {
		h.log.Warn().Msg("webhook signature mismatch")
		return c.NoContent(http.StatusForbidden)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.log.Warn().Err(err).Msg("webhook payload undecodable")
		return c.NoContent(http.StatusOK)
	}

	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				h.sink.Enqueue(msg.toInbound())
			}
		}
	}

	return c.NoContent(http.StatusOK)
}

// validSignature checks the HMAC-SHA256 payload signature, header format
// "sha256=<hex>". Comparison is constant-time.
func (h *WebhookHandler) validSignature(header string, body []byte) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	want, err := hex.DecodeString(header[len(prefix):])
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.appSecret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}
