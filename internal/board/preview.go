package board

import (
	"fmt"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Previews issues revocable handles for rendering local files before they
// are uploaded. Every Acquire must be paired with a Release.
type Previews interface {
	Acquire(file LocalFile) (string, error)
	Release(handle string)
}

// PreviewRegistry keeps local file previews in memory, keyed by handle.
type PreviewRegistry struct {
	mu    sync.RWMutex
	files map[string]LocalFile
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{files: make(map[string]LocalFile)}
}

func (r *PreviewRegistry) Acquire(file LocalFile) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate preview handle: %w", err)
	}

	r.mu.Lock()
	r.files[id] = file
	r.mu.Unlock()
	return id, nil
}

func (r *PreviewRegistry) Release(handle string) {
	r.mu.Lock()
	delete(r.files, handle)
	r.mu.Unlock()
}

// Get returns the file behind a live handle.
func (r *PreviewRegistry) Get(handle string) (LocalFile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.files[handle]
	return f, ok
}

// Len is the number of live handles.
func (r *PreviewRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}
