// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package files

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/tdnguyen/vaultgate/internal/platform/dberr"
)

// # Disk Implementation

// DiskBlobStore keeps blobs as flat files under one directory. The
// default [BlobStore] for single-node deployments.
type DiskBlobStore struct {
	root string
}

// NewDiskBlobStore creates the directory-backed blob store.
func NewDiskBlobStore(root string) (*DiskBlobStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, err
	}
	return &DiskBlobStore{root: root}, nil
}

// path maps a blob ID to its file. IDs are UUIDs validated at the
// transport layer, so no traversal characters reach this point.
func (store *DiskBlobStore) path(id string) string {
	return filepath.Join(store.root, id)
}

// Get opens the blob for reading.
func (store *DiskBlobStore) Get(_ context.Context, id string) (io.ReadCloser, error) {
	file, err := os.Open(store.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dberr.ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

// Put writes the blob, replacing any existing content.
func (store *DiskBlobStore) Put(_ context.Context, id string, content io.Reader) error {
	file, err := os.Create(store.path(id))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, content)
	return err
}

// Delete removes the blob.
func (store *DiskBlobStore) Delete(_ context.Context, id string) error {
	err := os.Remove(store.path(id))
	if os.IsNotExist(err) {
		return dberr.ErrNotFound
	}
	return err
}

// Stat reports the blob's size.
func (store *DiskBlobStore) Stat(_ context.Context, id string) (int64, error) {
	info, err := os.Stat(store.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, dberr.ErrNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// # In-Memory Implementation

// MemoryBlobStore keeps blobs in a map. Used in tests.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

// Get opens the blob for reading.
func (store *MemoryBlobStore) Get(_ context.Context, id string) (io.ReadCloser, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	content, ok := store.blobs[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Put writes the blob, replacing any existing content.
func (store *MemoryBlobStore) Put(_ context.Context, id string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.blobs[id] = data
	return nil
}

// Delete removes the blob.
func (store *MemoryBlobStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.blobs[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(store.blobs, id)
	return nil
}

// Stat reports the blob's size.
func (store *MemoryBlobStore) Stat(_ context.Context, id string) (int64, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	content, ok := store.blobs[id]
	if !ok {
		return 0, dberr.ErrNotFound
	}
	return int64(len(content)), nil
}
