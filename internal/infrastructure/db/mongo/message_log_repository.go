package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

const collectionMessageLogs = "message_logs"

// MessageLogRepository appends message audit entries. Callers treat failures
// as non-fatal.
type MessageLogRepository struct {
	col *mongo.Collection
}

func NewMessageLogRepository(db *mongo.Database) *MessageLogRepository {
	return &MessageLogRepository{col: db.Collection(collectionMessageLogs)}
}

func (r *MessageLogRepository) Insert(ctx context.Context, m *domain.MessageLog) error {
	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}
