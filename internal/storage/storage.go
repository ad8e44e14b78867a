package storage

import (
	"context"
	"io"
)

// Folders keep the two media kinds in separate namespaces so cleanup and
// quota policy can differ per kind.
const (
	FolderImages     = "images"
	FolderVoiceNotes = "voice_notes"
)

// BlobStorage is the durable home for note media. Upload returns the public
// URL the note document will reference; Delete accepts that same URL.
type BlobStorage interface {
	Upload(ctx context.Context, folder, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
