package ports

import (
	"context"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

// ImageStore uploads flow attachments to object storage under a namespace
// (e.g. "activities", "materials").
type ImageStore interface {
	Upload(ctx context.Context, data []byte, filename, mimeType, namespace string) (*domain.ImageRef, error)
}
