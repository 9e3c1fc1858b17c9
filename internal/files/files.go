// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

/*
Package files exposes the guarded file routes.

Every route runs through the gateway before touching a blob, so each
request is rate-limited, session-validated, and audited with the file
action it performed. The blob mechanics themselves live behind the
[BlobStore] interface; this package never interprets file content.
*/
package files

import (
	"context"
	"io"
)

// BlobStore is the external storage collaborator holding file content.
type BlobStore interface {

	// Get opens the blob for reading. The caller closes the reader.
	Get(ctx context.Context, id string) (io.ReadCloser, error)

	// Put writes the blob, replacing any existing content.
	Put(ctx context.Context, id string, content io.Reader) error

	// Delete removes the blob. Deleting an absent blob is an error.
	Delete(ctx context.Context, id string) error

	// Stat reports the blob's size, apperr.ErrNotFound when absent.
	Stat(ctx context.Context, id string) (int64, error)
}
