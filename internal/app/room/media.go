/*
Package room holds the in-memory room registry and the room data model.

This file defines the rules for media attachments: which MIME types are
accepted for the image and video message kinds, the size cap, and the
mapping from an upload's MIME type to its message kind.
*/
package room

import (
	"path/filepath"
	"strings"
	"time"

	"fadechat/internal/pkg/errs"
)

const (
	// MaxAttachmentSizeMB is the attachment size cap in megabytes.
	MaxAttachmentSizeMB = 25

	// MaxAttachmentSize is the attachment size cap in bytes.
	MaxAttachmentSize = MaxAttachmentSizeMB * 1024 * 1024

	// PresignedURLDuration is how long a presigned upload or download URL
	// stays valid.
	PresignedURLDuration = 5 * time.Minute
)

// AllowedMIMETypes is the set of attachment MIME types the relay accepts.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"video/mp4":  {},
	"video/webm": {},
}

// ExtToMIME maps accepted file extensions to their MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
}

// KindForMIME classifies an upload's MIME type as a message kind.
// Unrecognized types default to KindText so a bad classifier input never
// produces an unsendable message.
func KindForMIME(mimeType string) Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	default:
		return KindText
	}
}

// ValidateFileSize checks the declared upload size against the cap.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxAttachmentSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateFileType checks that the file name and MIME type are allowed and
// consistent with each other.
func ValidateFileType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) < 2 {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[ext]
	if !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	if expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}
