package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

const (
	collectionActivities = "activity_logs"
	collectionMaterials  = "material_requests"
	collectionBookings   = "bookings"
)

// RecordRepository implements ports.RecordRepository on MongoDB. All inserts
// are append-only; flow engines never update these documents afterwards.
type RecordRepository struct {
	db *mongo.Database
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) InsertActivity(ctx context.Context, a *domain.ActivityLog) (string, error) {
	return r.insert(ctx, collectionActivities, a)
}

func (r *RecordRepository) InsertMaterialRequest(ctx context.Context, m *domain.MaterialRequest) (string, error) {
	return r.insert(ctx, collectionMaterials, m)
}

func (r *RecordRepository) InsertBooking(ctx context.Context, b *domain.Booking) (string, error) {
	return r.insert(ctx, collectionBookings, b)
}

func (r *RecordRepository) insert(ctx context.Context, collection string, doc any) (string, error) {
	res, err := r.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

type activityDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	UserID       string             `bson:"user_id"`
	Phone        string             `bson:"phone"`
	SiteID       string             `bson:"site_id"`
	ActivityType string             `bson:"activity_type"`
	Hours        int                `bson:"hours"`
	Description  string             `bson:"description,omitempty"`
	Image        *domain.ImageRef   `bson:"image,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type materialDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"user_id"`
	Phone     string             `bson:"phone"`
	SiteID    string             `bson:"site_id"`
	Material  string             `bson:"material"`
	Quantity  int                `bson:"quantity"`
	Unit      string             `bson:"unit,omitempty"`
	Urgency   string             `bson:"urgency"`
	Image     *domain.ImageRef   `bson:"image,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (r *RecordRepository) RecentActivities(ctx context.Context, phone string, limit int) ([]*domain.ActivityLog, error) {
	cursor, err := r.db.Collection(collectionActivities).Find(ctx,
		bson.M{"phone": phone},
		recentOpts(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("recent activities: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.ActivityLog
	for cursor.Next(ctx) {
		var d activityDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("recent activities: %w", err)
		}
		out = append(out, &domain.ActivityLog{
			ID:           d.ID.Hex(),
			UserID:       d.UserID,
			Phone:        d.Phone,
			SiteID:       d.SiteID,
			ActivityType: d.ActivityType,
			Hours:        d.Hours,
			Description:  d.Description,
			Image:        d.Image,
			CreatedAt:    d.CreatedAt,
		})
	}
	return out, cursor.Err()
}

func (r *RecordRepository) RecentMaterialRequests(ctx context.Context, phone string, limit int) ([]*domain.MaterialRequest, error) {
	cursor, err := r.db.Collection(collectionMaterials).Find(ctx,
		bson.M{"phone": phone},
		recentOpts(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("recent material requests: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.MaterialRequest
	for cursor.Next(ctx) {
		var d materialDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("recent material requests: %w", err)
		}
		out = append(out, &domain.MaterialRequest{
			ID:        d.ID.Hex(),
			UserID:    d.UserID,
			Phone:     d.Phone,
			SiteID:    d.SiteID,
			Material:  d.Material,
			Quantity:  d.Quantity,
			Unit:      d.Unit,
			Urgency:   domain.Urgency(d.Urgency),
			Image:     d.Image,
			CreatedAt: d.CreatedAt,
		})
	}
	return out, cursor.Err()
}

func recentOpts(limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
}

// EnsureIndexes creates the phone+created_at indexes behind the dashboard reads.
func (r *RecordRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	keys := bson.D{{Key: "phone", Value: 1}, {Key: "created_at", Value: -1}}
	for _, collection := range []string{collectionActivities, collectionMaterials, collectionBookings} {
		if _, err := r.db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
			return err
		}
	}
	return nil
}
