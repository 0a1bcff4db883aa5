package devis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// PDFUseCase genera el PDF de un presupuesto guardado o la vista previa de un borrador.
type PDFUseCase struct {
	store QuoteStore
	gen   QuotePDFGenerator
	now   func() time.Time
	log   *logger.Logger
	obs   Observer
}

func NewPDFUseCase(store QuoteStore, gen QuotePDFGenerator, now func() time.Time, log *logger.Logger, obs Observer) *PDFUseCase {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Nop()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &PDFUseCase{store: store, gen: gen, now: now, log: log, obs: obs}
}

// QuotePDF devuelve el PDF y el nombre de archivo devis_<número>.pdf.
func (uc *PDFUseCase) QuotePDF(ctx context.Context, id string) ([]byte, string, error) {
	// ── 1. Cargar el presupuesto ──────────────────────────────────────────────
	q, err := uc.store.GetQuote(ctx, id)
	if err != nil {
		return nil, "", err
	}

	// ── 2. Documento (desglose, menciones, huella) ────────────────────────────
	doc, err := NewQuoteDocument(q, false)
	if err != nil {
		return nil, "", err
	}

	// ── 3. Render ─────────────────────────────────────────────────────────────
	pdf, err := uc.gen.GenerateQuotePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar %s: %w", q.Number, err)
	}
	uc.obs.DocumentRendered("pdf")
	uc.log.Debug().Str("number", q.Number).Int("bytes", len(pdf)).Msg("pdf generado")
	return pdf, PDFFilename(q.Number), nil
}

// PreviewPDF renderiza un borrador sin número ni huella.
func (uc *PDFUseCase) PreviewPDF(ctx context.Context, d entity.QuoteDraft) ([]byte, error) {
	now := uc.now()
	items := totals.RecomputeAll(d.LineItems)
	days := d.Conditions.ValidityDays
	if days <= 0 {
		days = entity.DefaultValidityDays
		d.Conditions.ValidityDays = days
	}
	q := entity.Quote{
		Number:       PreviewNumber,
		Status:       entity.QuoteStatusDraft,
		IssueDate:    now,
		ValidityDate: now.AddDate(0, 0, days),
		Company:      d.Company,
		Client:       d.Client,
		LineItems:    items,
		Conditions:   d.Conditions,
		Totals:       totals.ComputeTotals(items, d.Conditions.DepositPercent()),
		Subject:      d.Subject,
		Comments:     d.Comments,
		ModifiedAt:   now,
	}
	doc, err := NewQuoteDocument(q, true)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.gen.GenerateQuotePDF(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("pdf: vista previa: %w", err)
	}
	uc.obs.DocumentRendered("preview")
	return pdf, nil
}

// PDFFilename nombre de archivo seguro para un número de presupuesto.
func PDFFilename(number string) string {
	return "devis_" + strings.ReplaceAll(number, "/", "-") + ".pdf"
}
