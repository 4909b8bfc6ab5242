package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

type memoryFile struct {
	name        string
	contentType string
	data        []byte
}

// Memory keeps blobs in process memory. View URLs use the memory:// scheme.
type Memory struct {
	mu    sync.RWMutex
	files map[string]memoryFile
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string]memoryFile)}
}

func (m *Memory) CreateFile(_ context.Context, bucket, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	id := newFileID()
	m.mu.Lock()
	m.files[objectKey(bucket, id)] = memoryFile{
		name:        filename,
		contentType: contentTypeOf(filename),
		data:        buf.Bytes(),
	}
	m.mu.Unlock()
	return id, nil
}

func (m *Memory) FileViewURL(_ context.Context, bucket, id string) (string, error) {
	m.mu.RLock()
	_, ok := m.files[objectKey(bucket, id)]
	m.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return "memory://" + objectKey(bucket, id), nil
}

func (m *Memory) LinkURL(_ context.Context, bucket, id string) (string, error) {
	return "memory://" + objectKey(bucket, id), nil
}

// Len reports how many blobs are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
