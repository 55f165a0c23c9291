package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

const collectionUsers = "users"

// UserRepository implements ports.UserRepository on MongoDB. The phone field
// carries a unique index so one identity exists per normalized phone.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

type userDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Phone      string             `bson:"phone"`
	Name       string             `bson:"name,omitempty"`
	Email      string             `bson:"email,omitempty"`
	Role       string             `bson:"role"`
	Verified   bool               `bson:"verified"`
	VerifiedAt *time.Time         `bson:"verified_at,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:         d.ID.Hex(),
		Phone:      d.Phone,
		Name:       d.Name,
		Email:      d.Email,
		Role:       domain.Role(d.Role),
		Verified:   d.Verified,
		VerifiedAt: d.VerifiedAt,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var d userDoc
	if err := r.col.FindOne(ctx, bson.M{"phone": phone}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return d.toDomain(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := userDoc{
		Phone:      user.Phone,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Verified:   user.Verified,
		VerifiedAt: user.VerifiedAt,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Concurrent first contact: the other writer won, return its row.
			return r.FindByPhone(ctx, user.Phone)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	update := bson.M{"$set": bson.M{
		"name":        user.Name,
		"email":       user.Email,
		"role":        string(user.Role),
		"verified":    user.Verified,
		"verified_at": user.VerifiedAt,
		"updated_at":  user.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"phone": user.Phone}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique phone index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: indexUnique(),
	})
	return err
}
