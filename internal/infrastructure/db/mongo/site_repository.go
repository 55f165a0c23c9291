package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

const collectionSites = "sites"

// SiteRepository implements ports.SiteRepository on MongoDB. Site ids are
// opaque strings seeded by the back office.
type SiteRepository struct {
	col *mongo.Collection
}

func NewSiteRepository(db *mongo.Database) *SiteRepository {
	return &SiteRepository{col: db.Collection(collectionSites)}
}

type siteDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"created_at"`
}

func (r *SiteRepository) ListActive(ctx context.Context) ([]*domain.Site, error) {
	cursor, err := r.col.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Site
	for cursor.Next(ctx) {
		var d siteDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("list sites: %w", err)
		}
		out = append(out, &domain.Site{ID: d.ID, Name: d.Name, Active: d.Active, CreatedAt: d.CreatedAt})
	}
	return out, cursor.Err()
}
