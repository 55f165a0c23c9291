package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

// webhookEnvelope mirrors the WhatsApp Cloud API webhook notification payload.
// Only the fields the dispatcher consumes are mapped; everything else is
// ignored on decode.
type webhookEnvelope struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID      string          `json:"id"`
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Field string       `json:"field"`
	Value webhookValue `json:"value"`
}

type webhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []webhookMessage `json:"messages"`
	Statuses         []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"statuses"`
}

type webhookMessage struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	Timestamp   string `json:"timestamp"`
	Type        string `json:"type"`
	Text        *struct {
		Body string `json:"body"`
	} `json:"text"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply"`
		ListReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"list_reply"`
	} `json:"interactive"`
	Button *struct {
		Payload string `json:"payload"`
		Text    string `json:"text"`
	} `json:"button"`
	Image *struct {
		ID       string `json:"id"`
		MimeType string `json:"mime_type"`
	} `json:"image"`
}

// toInbound flattens one webhook message into the transport-agnostic event the
// worker pool consumes.
func (m webhookMessage) toInbound() ports.InboundMessage {
	out := ports.InboundMessage{
		MessageID: m.ID,
		From:      m.From,
		Timestamp: parseUnixString(m.Timestamp),
		Type:      m.Type,
	}
	if m.Text != nil {
		out.Text = strings.TrimSpace(m.Text.Body)
	}
	if m.Interactive != nil {
		if m.Interactive.ButtonReply != nil {
			out.ButtonID = m.Interactive.ButtonReply.ID
		}
		if m.Interactive.ListReply != nil {
			out.ListID = m.Interactive.ListReply.ID
		}
	}
	if m.Button != nil {
		out.QuickReplyID = m.Button.Payload
	}
	if m.Image != nil {
		out.ImageID = m.Image.ID
		out.ImageMime = m.Image.MimeType
	}
	return out
}

func parseUnixString(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}
