// Package storage stores flow image uploads in a MongoDB GridFS bucket,
// keyed by namespaced filenames such as "activities/<name>".
package storage

import (
	"bytes"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
)

const bucketName = "uploads"

// GridFSStore implements ports.ImageStore on a GridFS bucket.
type GridFSStore struct {
	bucket *gridfs.Bucket
	// baseURL is the public prefix the stored key is served under,
	// e.g. "https://files.example.com/uploads".
	baseURL string
}

func NewGridFSStore(db *mongo.Database, baseURL string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket, baseURL: baseURL}, nil
}

// Upload writes data under "<namespace>/<filename>" and returns the storage
// key plus the URL it will be served from. The caller treats failures as
// retryable and reports them to the user.
func (s *GridFSStore) Upload(ctx context.Context, data []byte, filename, mimeType, namespace string) (*domain.ImageRef, error) {
	key := namespace + "/" + filename
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": mimeType, "namespace": namespace})

	// GridFS streams predate context support; honor the caller's deadline.
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}

	stream, err := s.bucket.OpenUploadStreamWithID(key, key, opts)
	if err != nil {
		return nil, fmt.Errorf("open upload stream: %w", err)
	}
	if _, err := bytes.NewReader(data).WriteTo(stream); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("close upload: %w", err)
	}

	return &domain.ImageRef{
		URL: s.baseURL + "/" + key,
		Key: key,
	}, nil
}
