// Package whatsapp implements the outbound Messenger and MediaFetcher ports
// against the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/api/metrics"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

const defaultHTTPTimeout = 10 * time.Second

// maxMediaBytes caps attachment downloads (WhatsApp images are ≤5 MB).
const maxMediaBytes = 16 << 20

// Config holds the Cloud API settings.
type Config struct {
	BaseURL       string // e.g. https://graph.facebook.com/v19.0
	AccessToken   string
	PhoneNumberID string // sender phone number id
}

// Client talks to the WhatsApp Cloud API.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: defaultHTTPTimeout},
		log:  log,
	}
}

type textPayload struct {
	Body string `json:"body"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type listRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type listSection struct {
	Title string    `json:"title"`
	Rows  []listRow `json:"rows"`
}

type interactivePayload struct {
	Type   string       `json:"type"` // button | list
	Body   *textPayload `json:"body,omitempty"`
	Action struct {
		Buttons  []replyButton `json:"buttons,omitempty"`
		Button   string        `json:"button,omitempty"`
		Sections []listSection `json:"sections,omitempty"`
	} `json:"action"`
}

type messageRequest struct {
	MessagingProduct string              `json:"messaging_product"`
	To               string              `json:"to,omitempty"`
	Type             string              `json:"type,omitempty"`
	Text             *textPayload        `json:"text,omitempty"`
	Interactive      *interactivePayload `json:"interactive,omitempty"`
	Status           string              `json:"status,omitempty"`
	MessageID        string              `json:"message_id,omitempty"`
}

// SendText delivers a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	req := messageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: body},
	}
	return c.post(ctx, "text", req)
}

// SendButtons delivers an interactive reply-button message (at most three
// buttons per the platform limit).
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []ports.Button) error {
	interactive := &interactivePayload{Type: "button", Body: &textPayload{Body: body}}
	for _, b := range buttons {
		var rb replyButton
		rb.Type = "reply"
		rb.Reply.ID = b.ID
		rb.Reply.Title = b.Title
		interactive.Action.Buttons = append(interactive.Action.Buttons, rb)
	}
	req := messageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive:      interactive,
	}
	return c.post(ctx, "buttons", req)
}

// SendList delivers an interactive list message.
func (c *Client) SendList(ctx context.Context, to, body, buttonLabel string, sections []ports.ListSection) error {
	interactive := &interactivePayload{Type: "list", Body: &textPayload{Body: body}}
	interactive.Action.Button = buttonLabel
	for _, s := range sections {
		section := listSection{Title: s.Title}
		for _, r := range s.Rows {
			section.Rows = append(section.Rows, listRow{ID: r.ID, Title: r.Title, Description: r.Description})
		}
		interactive.Action.Sections = append(interactive.Action.Sections, section)
	}
	req := messageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive:      interactive,
	}
	return c.post(ctx, "list", req)
}

// MarkRead requests a read receipt for an inbound message.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	req := messageRequest{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}
	return c.post(ctx, "mark_read", req)
}

// FetchMedia resolves a media id to its download URL, then pulls the bytes.
func (c *Client) FetchMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	var meta struct {
		URL      string `json:"url"`
		MimeType string `json:"mime_type"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/%s", c.cfg.BaseURL, mediaID), &meta); err != nil {
		metrics.OutboundFailuresTotal.WithLabelValues("media").Inc()
		return nil, "", fmt.Errorf("resolve media %s: %w", mediaID, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fetch media %s: %w", mediaID, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.OutboundFailuresTotal.WithLabelValues("media").Inc()
		return nil, "", fmt.Errorf("fetch media %s: %w", mediaID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.OutboundFailuresTotal.WithLabelValues("media").Inc()
		return nil, "", fmt.Errorf("fetch media %s: status %d", mediaID, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read media %s: %w", mediaID, err)
	}
	return data, meta.MimeType, nil
}

func (c *Client) post(ctx context.Context, kind string, payload messageRequest) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", kind, err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build %s request: %w", kind, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.OutboundFailuresTotal.WithLabelValues(kind).Inc()
		return fmt.Errorf("send %s message: %w", kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.OutboundFailuresTotal.WithLabelValues(kind).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.Warn().Int("status", resp.StatusCode).Str("kind", kind).Str("body", string(body)).Msg("cloud api rejected message")
		return fmt.Errorf("send %s message: status %d", kind, resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
