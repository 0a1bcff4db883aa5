package devis

import (
	"context"
	"fmt"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
)

// DraftUseCase edición del borrador único con autoguardado diferido.
type DraftUseCase struct {
	store    QuoteStore
	autosave DraftScheduler
}

func NewDraftUseCase(store QuoteStore, autosave DraftScheduler) *DraftUseCase {
	return &DraftUseCase{store: store, autosave: autosave}
}

// Edit recalcula las líneas, programa el guardado y devuelve los totales en vivo.
// El borrador puede estar incompleto: no se valida.
func (uc *DraftUseCase) Edit(d entity.QuoteDraft) dto.TotalsResponse {
	d.LineItems = totals.RecomputeAll(d.LineItems)
	uc.autosave.Schedule(d)

	t := totals.ComputeTotals(d.LineItems, d.Conditions.DepositPercent())
	return dto.TotalsResponse{
		Totals:    t,
		Breakdown: breakdownResponse(totals.VATBreakdown(d.LineItems)),
		Formatted: formattedTotals(t),
	}
}

// Flush guarda ya el borrador pendiente, si lo hay.
func (uc *DraftUseCase) Flush(ctx context.Context) error {
	if err := uc.autosave.Flush(ctx); err != nil {
		return fmt.Errorf("borrador: guardar: %w", err)
	}
	return nil
}

// Get devuelve el borrador guardado tras volcar cualquier edición pendiente.
func (uc *DraftUseCase) Get(ctx context.Context) (*entity.QuoteDraft, error) {
	if err := uc.Flush(ctx); err != nil {
		return nil, err
	}
	d, err := uc.store.GetDraft(ctx)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("borrador: %w", domain.ErrNotFound)
	}
	return d, nil
}

// Discard cancela el guardado pendiente y borra el borrador.
func (uc *DraftUseCase) Discard(ctx context.Context) error {
	uc.autosave.Cancel()
	return uc.store.ClearDraft(ctx)
}
