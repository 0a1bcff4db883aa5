// Package storage persiste el documento único de la aplicación (presupuestos, borrador,
// valores por defecto y contador de numeración) sobre un backend clave/valor inyectado.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/repository"
	"github.com/jhoicas/devis-api/pkg/logger"
)

const (
	// DefaultKey clave bajo la que se guarda el documento.
	DefaultKey = "devis-app-data"
	// DefaultCapacityBytes capacidad nominal del backend (5 MiB).
	DefaultCapacityBytes = 5 * 1024 * 1024
	// NearCapacityPercent umbral de aviso de uso.
	NearCapacityPercent = 80
)

// Resultados de escritura reportados al Observer.
const (
	WriteOK            = "ok"
	WriteRetried       = "retried"
	WriteFailed        = "failed"
	WriteQuotaExceeded = "quota_exceeded"
)

// Clock devuelve la hora actual; se inyecta para numeración y limpieza deterministas.
type Clock func() time.Time

// Observer recibe eventos de escritura (métricas). Opcional.
type Observer interface {
	StorageWrite(result string)
	StorageEvicted(n int)
}

// Options configuración del Store.
type Options struct {
	Key           string
	CapacityBytes int
	Clock         Clock
	Logger        *logger.Logger
	Observer      Observer
}

// Store es el único escritor del documento. Todas las operaciones se serializan.
type Store struct {
	backend  repository.KVBackend
	key      string
	capacity int
	now      Clock
	log      *logger.Logger
	obs      Observer

	mu sync.Mutex
}

// NewStore crea el Store sobre el backend dado.
func NewStore(backend repository.KVBackend, opts Options) *Store {
	s := &Store{
		backend:  backend,
		key:      opts.Key,
		capacity: opts.CapacityBytes,
		now:      opts.Clock,
		log:      opts.Logger,
		obs:      opts.Observer,
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.capacity <= 0 {
		s.capacity = DefaultCapacityBytes
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// Key devuelve la clave de almacenamiento.
func (s *Store) Key() string { return s.key }

// Patch es una actualización superficial del documento: solo se aplican los campos no nil.
type Patch struct {
	Quotes             *[]entity.Quote
	Draft              *entity.QuoteDraft
	ClearDraft         bool
	DefaultCompany     *entity.Company
	DefaultConditions  *entity.Conditions
	CustomLegalNotices *[]string
	LastSequenceNumber *int
}

func (p Patch) apply(doc *entity.StorageDocument) {
	if p.Quotes != nil {
		doc.Quotes = *p.Quotes
	}
	if p.ClearDraft {
		doc.Draft = nil
	}
	if p.Draft != nil {
		d := *p.Draft
		doc.Draft = &d
	}
	if p.DefaultCompany != nil {
		c := *p.DefaultCompany
		doc.DefaultCompany = &c
	}
	if p.DefaultConditions != nil {
		c := *p.DefaultConditions
		doc.DefaultConditions = &c
	}
	if p.CustomLegalNotices != nil {
		doc.CustomLegalNotices = *p.CustomLegalNotices
	}
	if p.LastSequenceNumber != nil {
		doc.LastSequenceNumber = *p.LastSequenceNumber
	}
}

// Load devuelve el documento almacenado. Si no existe o no se puede decodificar devuelve el
// documento por defecto; solo los errores de E/S del backend se propagan.
func (s *Store) Load(ctx context.Context) (entity.StorageDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (entity.StorageDocument, error) {
	raw, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return entity.StorageDocument{}, fmt.Errorf("storage: leer %s: %w", s.key, err)
	}
	if !found || raw == "" {
		return entity.DefaultStorageDocument(), nil
	}
	doc, err := decodeDocument([]byte(raw))
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("documento ilegible, se usan valores por defecto")
		return entity.DefaultStorageDocument(), nil
	}
	return doc, nil
}

// decodeDocument decodifica sobre los valores por defecto: las claves ausentes los conservan.
func decodeDocument(data []byte) (entity.StorageDocument, error) {
	doc := entity.DefaultStorageDocument()
	if err := json.Unmarshal(data, &doc); err != nil {
		return entity.StorageDocument{}, err
	}
	normalize(&doc)
	return doc, nil
}

func normalize(doc *entity.StorageDocument) {
	if doc.Quotes == nil {
		doc.Quotes = []entity.Quote{}
	}
	if doc.CustomLegalNotices == nil {
		doc.CustomLegalNotices = []string{}
	}
	if doc.LastSequenceNumber < 0 {
		doc.LastSequenceNumber = 0
	}
}

// Save fusiona el patch en el documento actual y lo escribe completo.
// Ante domain.ErrQuotaExceeded aplica RetentionSweep y reintenta una única vez;
// si vuelve a fallar devuelve domain.ErrStorageFull.
func (s *Store) Save(ctx context.Context, p Patch) error {
	return s.update(ctx, func(doc *entity.StorageDocument) error {
		p.apply(doc)
		return nil
	})
}

// update ejecuta lectura-modificación-escritura bajo el mutex.
func (s *Store) update(ctx context.Context, fn func(doc *entity.StorageDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.write(ctx, &doc)
}

func (s *Store) write(ctx context.Context, doc *entity.StorageDocument) error {
	normalize(doc)
	err := s.set(ctx, doc)
	if err == nil {
		s.report(WriteOK)
		return nil
	}
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		s.report(WriteFailed)
		return fmt.Errorf("storage: escribir %s: %w", s.key, err)
	}

	s.report(WriteQuotaExceeded)
	before := len(doc.Quotes)
	doc.Quotes = RetentionSweep(doc.Quotes, s.now())
	evicted := before - len(doc.Quotes)
	if s.obs != nil && evicted > 0 {
		s.obs.StorageEvicted(evicted)
	}
	s.log.Warn().Str("key", s.key).Int("evicted", evicted).Msg("cuota excedida, reintento tras limpieza")

	if err := s.set(ctx, doc); err != nil {
		s.report(WriteFailed)
		s.log.Error().Err(err).Str("key", s.key).Msg("imposible guardar incluso tras la limpieza")
		return fmt.Errorf("%w: %w", domain.ErrStorageFull, err)
	}
	s.report(WriteRetried)
	return nil
}

func (s *Store) set(ctx context.Context, doc *entity.StorageDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("storage: serializar documento: %w", err)
	}
	return s.backend.Set(ctx, s.key, string(data))
}

func (s *Store) report(result string) {
	if s.obs != nil {
		s.obs.StorageWrite(result)
	}
}

// NextQuoteNumber incrementa y persiste el contador global y devuelve DEVIS-<año>-<NNNN>.
// El año es solo etiqueta: el contador no se reinicia por año y nunca se reutiliza.
func (s *Store) NextQuoteNumber(ctx context.Context) (string, error) {
	var number string
	err := s.update(ctx, func(doc *entity.StorageDocument) error {
		doc.LastSequenceNumber++
		number = FormatQuoteNumber(s.now().Year(), doc.LastSequenceNumber)
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// FormatQuoteNumber compone el número de presupuesto: DEVIS-2025-0007.
func FormatQuoteNumber(year, seq int) string {
	return fmt.Sprintf("DEVIS-%04d-%04d", year, seq)
}

// UpsertQuote reemplaza el presupuesto con el mismo ID o lo añade.
func (s *Store) UpsertQuote(ctx context.Context, q entity.Quote) error {
	return s.update(ctx, func(doc *entity.StorageDocument) error {
		for i := range doc.Quotes {
			if doc.Quotes[i].ID == q.ID {
				doc.Quotes[i] = q
				return nil
			}
		}
		doc.Quotes = append(doc.Quotes, q)
		return nil
	})
}

// DeleteQuote elimina el presupuesto; no hace nada si no existe.
func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	return s.update(ctx, func(doc *entity.StorageDocument) error {
		kept := doc.Quotes[:0]
		for _, q := range doc.Quotes {
			if q.ID != id {
				kept = append(kept, q)
			}
		}
		doc.Quotes = kept
		return nil
	})
}

// GetQuote devuelve el presupuesto por ID o domain.ErrNotFound.
func (s *Store) GetQuote(ctx context.Context, id string) (entity.Quote, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return entity.Quote{}, err
	}
	for _, q := range doc.Quotes {
		if q.ID == id {
			return q, nil
		}
	}
	return entity.Quote{}, fmt.Errorf("presupuesto %s: %w", id, domain.ErrNotFound)
}

// ListQuotes devuelve los presupuestos ordenados por modificación descendente (orden estable).
func (s *Store) ListQuotes(ctx context.Context) ([]entity.Quote, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return sortByRecency(doc.Quotes), nil
}

func sortByRecency(quotes []entity.Quote) []entity.Quote {
	out := make([]entity.Quote, len(quotes))
	copy(out, quotes)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ModifiedAt.After(out[j].ModifiedAt) })
	return out
}

// Sweep aplica RetentionSweep al documento almacenado y devuelve cuántos presupuestos eliminó.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	var evicted int
	err := s.update(ctx, func(doc *entity.StorageDocument) error {
		before := len(doc.Quotes)
		doc.Quotes = RetentionSweep(doc.Quotes, s.now())
		evicted = before - len(doc.Quotes)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.obs != nil && evicted > 0 {
		s.obs.StorageEvicted(evicted)
	}
	return evicted, nil
}
