package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

const collectionOTP = "otp_codes"

// OTPRepository implements ports.OTPRepository on MongoDB. The phone field is
// the document key, so at most one live code exists per phone.
type OTPRepository struct {
	col *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{col: db.Collection(collectionOTP)}
}

func (r *OTPRepository) Get(ctx context.Context, phone string) (*domain.OTPCode, error) {
	var code domain.OTPCode
	if err := r.col.FindOne(ctx, bson.M{"phone": phone}).Decode(&code); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}
	return &code, nil
}

func (r *OTPRepository) Put(ctx context.Context, code *domain.OTPCode) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"phone": code.Phone}, code, opts); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (r *OTPRepository) Delete(ctx context.Context, phone string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"phone": phone}); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}

// IncrementAttempts atomically bumps the attempt counter and returns the new
// value, so concurrent wrong guesses cannot share a count.
func (r *OTPRepository) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var code domain.OTPCode
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"phone": phone},
		bson.M{"$inc": bson.M{"attempts": 1}},
		opts,
	).Decode(&code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrOTPNotFound
		}
		return 0, fmt.Errorf("increment otp attempts: %w", err)
	}
	return code.Attempts, nil
}

// EnsureIndexes creates the unique phone index and the TTL index that reaps
// expired codes server-side.
func (r *OTPRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: indexUnique()},
		{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
