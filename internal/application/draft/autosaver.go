// Package draft implementa el autoguardado diferido (debounce) del borrador.
package draft

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// DefaultDelay retardo por defecto entre la última edición y el guardado.
const DefaultDelay = 2 * time.Second

const saveTimeout = 5 * time.Second

// Saver persiste el borrador.
type Saver interface {
	SaveDraft(ctx context.Context, d entity.QuoteDraft) error
}

// Autosaver guarda el borrador cuando pasan delay sin nuevas ediciones.
// Cada Schedule cancela el guardado pendiente y programa uno nuevo.
type Autosaver struct {
	saver Saver
	delay time.Duration
	log   *logger.Logger

	mu      sync.Mutex
	timer   *time.Timer
	pending *entity.QuoteDraft
	gen     uint64
	closed  bool

	// saveMu se mantiene durante un guardado en curso; Cancel y Flush lo esperan.
	saveMu sync.Mutex
}

// NewAutosaver crea el autoguardado. delay <= 0 usa DefaultDelay.
func NewAutosaver(saver Saver, delay time.Duration, log *logger.Logger) *Autosaver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Autosaver{saver: saver, delay: delay, log: log}
}

// Delay devuelve el retardo configurado.
func (a *Autosaver) Delay() time.Duration { return a.delay }

// Schedule programa el guardado de d, reemplazando cualquier guardado pendiente.
func (a *Autosaver) Schedule(d entity.QuoteDraft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.pending = &d
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

func (a *Autosaver) fire(gen uint64) {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if gen != a.gen || a.pending == nil {
		a.mu.Unlock()
		return
	}
	d := a.pending
	a.pending = nil
	a.timer = nil
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := a.saver.SaveDraft(ctx, *d); err != nil {
		a.log.Error().Err(err).Msg("autoguardado del borrador falló")
		a.restore(gen, d)
		return
	}
	a.log.Debug().Msg("borrador autoguardado")
}

// Pending indica si hay un guardado programado.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Cancel descarta el guardado pendiente y espera a que termine uno en curso.
// Tras Cancel ningún guardado programado antes puede escribir.
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	a.stopLocked()
	a.mu.Unlock()

	// Espera a que termine un guardado en curso.
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
}

func (a *Autosaver) stopLocked() *entity.QuoteDraft {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
	d := a.pending
	a.pending = nil
	return d
}

// Flush guarda inmediatamente el borrador pendiente, si lo hay.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	d := a.stopLocked()
	gen := a.gen
	a.mu.Unlock()

	if d == nil {
		return nil
	}
	if err := a.saver.SaveDraft(ctx, *d); err != nil {
		a.restore(gen, d)
		return err
	}
	return nil
}

// restore vuelve a dejar pendiente un borrador cuyo guardado falló,
// salvo que entretanto haya llegado otra edición o un Cancel.
func (a *Autosaver) restore(gen uint64, d *entity.QuoteDraft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending == nil && a.gen == gen {
		a.pending = d
	}
}

// Close guarda lo pendiente y deja de aceptar nuevas ediciones.
func (a *Autosaver) Close(ctx context.Context) error {
	err := a.Flush(ctx)
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	return err
}
