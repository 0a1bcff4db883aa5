package storage

import (
	"context"
	"fmt"
	"math"
)

// Usage es el uso del backend por el documento.
type Usage struct {
	UsedBytes     int  `json:"used_bytes"`
	CapacityBytes int  `json:"capacity_bytes"`
	Percentage    int  `json:"percentage"`
	NearCapacity  bool `json:"near_capacity"`
}

// StorageUsage mide el tamaño en bytes UTF-8 del valor almacenado frente a la capacidad fija.
func (s *Store) StorageUsage(ctx context.Context) (Usage, error) {
	s.mu.Lock()
	raw, _, err := s.backend.Get(ctx, s.key)
	s.mu.Unlock()
	if err != nil {
		return Usage{}, fmt.Errorf("storage: leer %s: %w", s.key, err)
	}
	used := len(raw)
	pct := int(math.Round(float64(used) / float64(s.capacity) * 100))
	return Usage{
		UsedBytes:     used,
		CapacityBytes: s.capacity,
		Percentage:    pct,
		NearCapacity:  pct >= NearCapacityPercent,
	}, nil
}
