package ports

import (
	"context"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

// RecordRepository persists the write-once records the flow engines emit and
// serves the reads behind the employee dashboard.
type RecordRepository interface {
	InsertActivity(ctx context.Context, a *domain.ActivityLog) (id string, err error)
	InsertMaterialRequest(ctx context.Context, m *domain.MaterialRequest) (id string, err error)
	InsertBooking(ctx context.Context, b *domain.Booking) (id string, err error)

	// RecentActivities returns the newest activity entries for phone,
	// newest first, capped at limit.
	RecentActivities(ctx context.Context, phone string, limit int) ([]*domain.ActivityLog, error)
	RecentMaterialRequests(ctx context.Context, phone string, limit int) ([]*domain.MaterialRequest, error)
}

// MessageLogRepository appends best-effort message audit entries.
type MessageLogRepository interface {
	Insert(ctx context.Context, m *domain.MessageLog) error
}

// SiteRepository serves the site catalog the employee flows tag records with.
type SiteRepository interface {
	ListActive(ctx context.Context) ([]*domain.Site, error)
}
