// Package kv contiene el backend clave/valor en memoria (modo efímero y tests).
package kv

import (
	"context"
	"sync"

	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/repository"
)

// MemoryBackend guarda los valores en un mapa protegido por mutex.
// capacity <= 0 desactiva el límite.
type MemoryBackend struct {
	mu       sync.RWMutex
	data     map[string]string
	capacity int
}

var _ repository.KVBackend = (*MemoryBackend)(nil)

// NewMemoryBackend crea un backend vacío con la capacidad en bytes por valor.
func NewMemoryBackend(capacity int) *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string), capacity: capacity}
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	if m.capacity > 0 && len(value) > m.capacity {
		return domain.ErrQuotaExceeded
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
