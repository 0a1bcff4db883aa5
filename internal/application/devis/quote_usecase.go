// Package devis contiene los casos de uso del presupuesto: alta, edición, estados,
// búsqueda, estadísticas, borrador, ajustes y documentos (PDF, UBL).
package devis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// transitions estados alcanzables desde cada estado almacenado. Expiré nunca se asigna.
var transitions = map[string][]string{
	entity.QuoteStatusDraft: {entity.QuoteStatusSent},
	entity.QuoteStatusSent:  {entity.QuoteStatusAccepted, entity.QuoteStatusRejected},
}

// QuoteUseCase casos de uso sobre presupuestos guardados.
type QuoteUseCase struct {
	store     QuoteStore
	validator *Validator
	autosave  DraftScheduler
	now       func() time.Time
	log       *logger.Logger
	obs       Observer
}

// NewQuoteUseCase construye el caso de uso. obs puede ser nil.
func NewQuoteUseCase(
	store QuoteStore,
	validator *Validator,
	autosave DraftScheduler,
	now func() time.Time,
	log *logger.Logger,
	obs Observer,
) *QuoteUseCase {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &QuoteUseCase{store: store, validator: validator, autosave: autosave, now: now, log: log, obs: obs}
}

// Create valida, calcula totales, asigna número y guarda el presupuesto en Brouillon.
// Tras guardar cancela el autoguardado pendiente y borra el borrador.
func (uc *QuoteUseCase) Create(ctx context.Context, req dto.QuoteRequest) (*dto.QuoteResponse, error) {
	// ── 1. Validar antes de consumir un número ────────────────────────────────
	if err := uc.validator.Struct(req); err != nil {
		return nil, err
	}

	// ── 2. Construir líneas, condiciones y totales ────────────────────────────
	defaults, err := uc.store.GetDefaultConditions(ctx)
	if err != nil {
		return nil, fmt.Errorf("devis: condiciones por defecto: %w", err)
	}
	notices, err := uc.store.GetCustomLegalNotices(ctx)
	if err != nil {
		return nil, fmt.Errorf("devis: menciones personalizadas: %w", err)
	}
	items := lineItemsFromRequest(req.LineItems)
	conditions := conditionsFromRequest(req.Conditions, defaults, notices)

	// ── 3. Numeración ─────────────────────────────────────────────────────────
	number, err := uc.store.NextQuoteNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("devis: numeración: %w", err)
	}

	now := uc.now()
	q := entity.Quote{
		ID:           uuid.New().String(),
		Number:       number,
		Status:       entity.QuoteStatusDraft,
		IssueDate:    now,
		ValidityDate: now.AddDate(0, 0, conditions.ValidityDays),
		Company:      companyFromRequest(req.Company),
		Client:       clientFromRequest(req.Client),
		LineItems:    items,
		Conditions:   conditions,
		Totals:       totals.ComputeTotals(items, conditions.DepositPercent()),
		Subject:      req.Subject,
		Comments:     req.Comments,
		ModifiedAt:   now,
		Version:      1,
	}

	// ── 4. Persistir ──────────────────────────────────────────────────────────
	if err := uc.store.UpsertQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("devis: guardar %s: %w", number, err)
	}

	// ── 5. Descartar el borrador ──────────────────────────────────────────────
	if uc.autosave != nil {
		uc.autosave.Cancel()
	}
	if err := uc.store.ClearDraft(ctx); err != nil {
		uc.log.Warn().Err(err).Str("number", number).Msg("no se pudo borrar el borrador tras guardar")
	}

	uc.obs.QuoteSaved("create")
	uc.log.Info().Str("id", q.ID).Str("number", number).Str("total_ttc", q.Totals.TotalTTC.StringFixed(2)).Msg("presupuesto creado")
	resp := toQuoteResponse(q, now)
	return &resp, nil
}

// Update reemplaza el contenido de un presupuesto abierto (Brouillon o Envoyé),
// conserva número y fecha de emisión e incrementa la versión.
func (uc *QuoteUseCase) Update(ctx context.Context, id string, req dto.QuoteRequest) (*dto.QuoteResponse, error) {
	if err := uc.validator.Struct(req); err != nil {
		return nil, err
	}
	q, err := uc.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == entity.QuoteStatusAccepted || q.Status == entity.QuoteStatusRejected {
		return nil, fmt.Errorf("%w: el presupuesto %s está cerrado (%s)", domain.ErrInvalidTransition, q.Number, q.Status)
	}
	defaults, err := uc.store.GetDefaultConditions(ctx)
	if err != nil {
		return nil, fmt.Errorf("devis: condiciones por defecto: %w", err)
	}

	items := lineItemsFromRequest(req.LineItems)
	conditions := conditionsFromRequest(req.Conditions, defaults, q.Conditions.CustomNotices)
	now := uc.now()

	q.Company = companyFromRequest(req.Company)
	q.Client = clientFromRequest(req.Client)
	q.LineItems = items
	q.Conditions = conditions
	q.Totals = totals.ComputeTotals(items, conditions.DepositPercent())
	q.ValidityDate = q.IssueDate.AddDate(0, 0, conditions.ValidityDays)
	q.Subject = req.Subject
	q.Comments = req.Comments
	q.ModifiedAt = now
	q.Version++

	if err := uc.store.UpsertQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("devis: actualizar %s: %w", q.Number, err)
	}
	uc.obs.QuoteSaved("update")
	resp := toQuoteResponse(q, now)
	return &resp, nil
}

// ChangeStatus aplica una transición: Brouillon → Envoyé → Accepté | Refusé.
// Un presupuesto cuya validez ya pasó no puede aceptarse.
func (uc *QuoteUseCase) ChangeStatus(ctx context.Context, id, status string) (*dto.QuoteResponse, error) {
	switch status {
	case entity.QuoteStatusDraft, entity.QuoteStatusSent, entity.QuoteStatusAccepted, entity.QuoteStatusRejected:
	case entity.QuoteStatusExpired:
		return nil, fmt.Errorf("%w: %s se deriva de la fecha de validez", domain.ErrInvalidTransition, status)
	default:
		return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrInvalidInput, status)
	}

	q, err := uc.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if !allowed(q.Status, status) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, q.Status, status)
	}
	if status == entity.QuoteStatusAccepted && q.EffectiveStatus(now) == entity.QuoteStatusExpired {
		return nil, fmt.Errorf("%w: el presupuesto %s expiró el %s", domain.ErrInvalidTransition, q.Number, q.ValidityDate.Format("2006-01-02"))
	}

	q.Status = status
	q.ModifiedAt = now
	if err := uc.store.UpsertQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("devis: cambiar estado %s: %w", q.Number, err)
	}
	uc.obs.QuoteSaved("status")
	uc.log.Info().Str("number", q.Number).Str("status", status).Msg("estado actualizado")
	resp := toQuoteResponse(q, now)
	return &resp, nil
}

func allowed(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Get devuelve un presupuesto con su estado efectivo.
func (uc *QuoteUseCase) Get(ctx context.Context, id string) (*dto.QuoteResponse, error) {
	q, err := uc.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toQuoteResponse(q, uc.now())
	return &resp, nil
}

// Delete elimina el presupuesto. Su número no se reutiliza.
func (uc *QuoteUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.store.GetQuote(ctx, id); err != nil {
		return err
	}
	if err := uc.store.DeleteQuote(ctx, id); err != nil {
		return fmt.Errorf("devis: eliminar: %w", err)
	}
	uc.obs.QuoteSaved("delete")
	return nil
}

// Duplicate copia el presupuesto en el borrador para reeditarlo como uno nuevo.
func (uc *QuoteUseCase) Duplicate(ctx context.Context, id string) (*entity.QuoteDraft, error) {
	q, err := uc.store.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	d := entity.DraftFromQuote(q)
	for i := range d.LineItems {
		d.LineItems[i].ID = uuid.New().String()
	}
	if uc.autosave != nil {
		uc.autosave.Cancel()
	}
	if err := uc.store.SaveDraft(ctx, d); err != nil {
		return nil, fmt.Errorf("devis: duplicar: %w", err)
	}
	return &d, nil
}

// ComputeTotals vista previa de totales para un formulario en curso. No valida: el motor limita.
func (uc *QuoteUseCase) ComputeTotals(req dto.TotalsRequest) dto.TotalsResponse {
	items := lineItemsFromRequest(req.LineItems)
	t := totals.ComputeTotals(items, req.DepositPercent)
	return dto.TotalsResponse{
		Totals:    t,
		Breakdown: breakdownResponse(totals.VATBreakdown(items)),
		Formatted: formattedTotals(t),
	}
}

// IsNotFound ayuda a los adaptadores a distinguir ausencia de error de E/S.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
