package devis

import (
	"context"

	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/domain/entity"
)

// QuoteStore persistencia de presupuestos, borrador y valores por defecto (storage.Store).
type QuoteStore interface {
	NextQuoteNumber(ctx context.Context) (string, error)
	UpsertQuote(ctx context.Context, q entity.Quote) error
	GetQuote(ctx context.Context, id string) (entity.Quote, error)
	DeleteQuote(ctx context.Context, id string) error
	ListQuotes(ctx context.Context) ([]entity.Quote, error)

	SaveDraft(ctx context.Context, d entity.QuoteDraft) error
	GetDraft(ctx context.Context) (*entity.QuoteDraft, error)
	ClearDraft(ctx context.Context) error

	GetDefaultConditions(ctx context.Context) (entity.Conditions, error)
	GetCustomLegalNotices(ctx context.Context) ([]string, error)
}

// SettingsStore operaciones de ajustes y mantenimiento del almacenamiento.
type SettingsStore interface {
	SaveDefaultCompany(ctx context.Context, c entity.Company) error
	GetDefaultCompany(ctx context.Context) (*entity.Company, error)
	SaveDefaultConditions(ctx context.Context, c entity.Conditions) error
	GetDefaultConditions(ctx context.Context) (entity.Conditions, error)
	SaveCustomLegalNotices(ctx context.Context, notices []string) error
	GetCustomLegalNotices(ctx context.Context) ([]string, error)

	StorageUsage(ctx context.Context) (storage.Usage, error)
	Sweep(ctx context.Context) (int, error)
	ExportSnapshot(ctx context.Context) ([]byte, error)
	ImportSnapshot(ctx context.Context, data []byte) error
}

// DraftScheduler autoguardado diferido del borrador (draft.Autosaver).
type DraftScheduler interface {
	Schedule(d entity.QuoteDraft)
	Cancel()
	Flush(ctx context.Context) error
}

// QuotePDFGenerator genera el PDF del presupuesto.
type QuotePDFGenerator interface {
	GenerateQuotePDF(ctx context.Context, doc *QuoteDocument) ([]byte, error)
}

// QuoteXMLBuilder genera el XML UBL 2.1 (Quotation) del presupuesto.
type QuoteXMLBuilder interface {
	BuildQuotation(doc *QuoteDocument) ([]byte, error)
}

// Observer recibe eventos de negocio (métricas). Opcional.
type Observer interface {
	QuoteSaved(action string)
	DocumentRendered(kind string)
}

type nopObserver struct{}

func (nopObserver) QuoteSaved(string)       {}
func (nopObserver) DocumentRendered(string) {}
