/*
Package storage provides presigned-URL access to the attachment object
store. Attachment bytes move directly between clients and the store; the
relay's control channel only ever carries references.
*/
package storage

import (
	"context"
	"time"
)

// ServiceConfig holds the connection settings for the object store.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// StorageService is the interface the handlers program against.
type StorageService interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error

	// PurgeRoom removes every object under the room's key prefix and
	// reports how many went. Rooms are ephemeral; their attachments go
	// with them.
	PurgeRoom(ctx context.Context, roomID string) (int, error)
}

// NewStorageService builds the S3-compatible implementation.
func NewStorageService(cfg ServiceConfig) (StorageService, error) {
	return newS3Client(cfg)
}
