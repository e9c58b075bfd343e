package service

import (
	"context"
	"io"
)

// UploadedObject describes an object written to storage.
type UploadedObject struct {
	URL        string
	Bucket     string
	ObjectName string
	Size       int64
}

type FileUploadService interface {
	// UploadObject writes body under objectName with the given content type.
	UploadObject(ctx context.Context, body io.Reader, contentType, objectName string) (*UploadedObject, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}
