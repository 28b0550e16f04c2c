package storage

import (
	"context"
)

// Stored is the outcome of StoreOrInline. Value is the remote URL when Remote
// is true, otherwise the original inline payload; Err keeps the reason the
// remote attempt failed.
type Stored struct {
	Value  string
	Remote bool
	Err    error
}

// Inline reports whether the value had to be kept inline.
func (s Stored) Inline() bool {
	return s.Value != "" && !s.Remote
}

// StoreOrInline tries the remote host and falls back to the inline payload.
// Empty data yields a zero Stored; values that already are URLs are kept.
func StoreOrInline(ctx context.Context, fs FileStorage, kind Kind, data, folder, publicID string) Stored {
	if data == "" {
		return Stored{}
	}
	if IsRemoteURL(data) {
		return Stored{Value: data, Remote: true}
	}
	if fs == nil {
		return Stored{Value: data, Err: &UploadError{Kind: kind, Err: ErrStorageDisabled}}
	}

	url, err := fs.Upload(ctx, kind, data, folder, publicID)
	if err != nil {
		return Stored{Value: data, Err: err}
	}
	return Stored{Value: url, Remote: true}
}
