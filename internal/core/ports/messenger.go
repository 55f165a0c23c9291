package ports

import "context"

// Button is one interactive reply option (a platform allows at most three).
type Button struct {
	ID    string
	Title string
}

// ListRow is a selectable row inside a list message section.
type ListRow struct {
	ID          string
	Title       string
	Description string // optional
}

// ListSection groups list rows under a title.
type ListSection struct {
	Title string
	Rows  []ListRow
}

// Messenger is the outbound messaging transport. All sends are best-effort
// from the callers' point of view: a failed send is logged and tolerated.
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	SendButtons(ctx context.Context, to, body string, buttons []Button) error
	SendList(ctx context.Context, to, body, buttonLabel string, sections []ListSection) error
	MarkRead(ctx context.Context, messageID string) error
}

// MediaFetcher downloads an attachment from the messaging platform's media
// store by its media id.
type MediaFetcher interface {
	FetchMedia(ctx context.Context, mediaID string) (data []byte, mimeType string, err error)
}
