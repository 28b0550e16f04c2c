package storage

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the type of media being stored.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindVideo Kind = "video"
)

//go:generate mockgen -source=$GOFILE -destination=storagemock/storage_mock.go -package=storagemock

// FileStorage defines the interface for the remote media host.
type FileStorage interface {
	// Upload stores an inline payload (data URL or bare base64) under
	// folder/publicID and returns its public URL. An empty publicID gets a
	// generated one. Failures are *UploadError; nothing is retried or
	// cleaned up.
	Upload(ctx context.Context, kind Kind, data, folder, publicID string) (string, error)

	// MakePublic forces public read access on an existing object.
	MakePublic(ctx context.Context, key string) error

	// ListObjects returns the keys of all objects under prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)
}

// ErrStorageDisabled is reported when no media host is configured.
var ErrStorageDisabled = errors.New("media storage is not configured")

// UploadError wraps a failed upload and keeps the transport message.
type UploadError struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *UploadError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("upload %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("upload %s to %q: %v", e.Kind, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
