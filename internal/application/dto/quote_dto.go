package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/devis-api/internal/domain/entity"
)

// MaxLineItems máximo de líneas por presupuesto.
const MaxLineItems = 50

// CompanyRequest datos del emisor.
type CompanyRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Address    string `json:"address" validate:"required,max=300"`
	PostalCode string `json:"postal_code" validate:"required,postalcode"`
	City       string `json:"city" validate:"required,max=100"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,frphone"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	SIRET      string `json:"siret" validate:"required,siret"`
	VATNumber  string `json:"vat_number,omitempty" validate:"max=20"`
	LegalForm  string `json:"legal_form" validate:"omitempty,legalform"`
	Activity   string `json:"activity,omitempty" validate:"max=200"`
}

// ClientRequest datos del destinatario. SIRET opcional (particulares).
type ClientRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Address    string `json:"address" validate:"max=300"`
	PostalCode string `json:"postal_code" validate:"omitempty,postalcode"`
	City       string `json:"city" validate:"max=100"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,frphone"`
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	SIRET      string `json:"siret,omitempty" validate:"omitempty,siret"`
}

// LineItemRequest línea de prestación. Importes como número o string decimal.
type LineItemRequest struct {
	ID          string          `json:"id,omitempty"`
	Designation string          `json:"designation" validate:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Unit        string          `json:"unit" validate:"required,unit"`
	UnitPriceHT decimal.Decimal `json:"unit_price_ht" validate:"min=0.01,max=999999.99"`
	VATRate     decimal.Decimal `json:"vat_rate" validate:"vatrate"`
}

// ConditionsRequest condiciones comerciales. ValidityDays ausente (0) aplica el valor por defecto.
type ConditionsRequest struct {
	ValidityDays   int                  `json:"validity_days" validate:"omitempty,min=1,max=365"`
	ExecutionDelay string               `json:"execution_delay" validate:"max=200"`
	PaymentTerms   string               `json:"payment_terms" validate:"max=300"`
	PaymentMethods []string             `json:"payment_methods" validate:"max=10,dive,max=100"`
	DepositPercent decimal.Decimal      `json:"deposit_percent" validate:"min=0,max=100"`
	CustomNotices  []string             `json:"custom_notices,omitempty" validate:"max=20,dive,max=500"`
	Clauses        *entity.LegalClauses `json:"clauses,omitempty"`
}

// QuoteRequest body para POST /api/quotes y PUT /api/quotes/:id.
type QuoteRequest struct {
	Company    CompanyRequest    `json:"company"`
	Client     ClientRequest     `json:"client"`
	LineItems  []LineItemRequest `json:"line_items" validate:"required,min=1,max=50,dive"`
	Conditions ConditionsRequest `json:"conditions"`
	Subject    string            `json:"subject,omitempty" validate:"max=200"`
	Comments   string            `json:"comments,omitempty" validate:"max=1000"`
}

// StatusRequest body para PATCH /api/quotes/:id/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TotalsRequest body para POST /api/totals (vista previa del motor de totales).
type TotalsRequest struct {
	LineItems      []LineItemRequest `json:"line_items"`
	DepositPercent decimal.Decimal   `json:"deposit_percent"`
}

// VATBreakdownResponse entrada del desglose de IVA con importes formateados.
type VATBreakdownResponse struct {
	Rate          decimal.Decimal `json:"rate"`
	BaseHT        decimal.Decimal `json:"base_ht"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	RateLabel     string          `json:"rate_label"`
	BaseLabel     string          `json:"base_label"`
	VATAmountText string          `json:"vat_amount_label"`
}

// TotalsResponse totales calculados, desglose y versiones formateadas para mostrar.
type TotalsResponse struct {
	Totals    entity.Totals          `json:"totals"`
	Breakdown []VATBreakdownResponse `json:"vat_breakdown"`
	Formatted map[string]string      `json:"formatted"`
}

// QuoteResponse presupuesto con su estado efectivo (Expiré derivado).
type QuoteResponse struct {
	entity.Quote
	EffectiveStatus string                 `json:"effective_status"`
	Breakdown       []VATBreakdownResponse `json:"vat_breakdown"`
}

// QuoteListFilter parámetros de GET /api/quotes.
type QuoteListFilter struct {
	Status    string `query:"status"`
	Query     string `query:"q"`
	From      string `query:"from"` // YYYY-MM-DD, fecha de emisión
	To        string `query:"to"`
	MinAmount string `query:"min_amount"` // importe TTC
	MaxAmount string `query:"max_amount"`
	SortBy    string `query:"sort"`  // date, number, client, amount
	SortOrder string `query:"order"` // asc, desc
}

// QuoteStatsResponse estadísticas de GET /api/quotes/stats.
type QuoteStatsResponse struct {
	Total          int             `json:"total"`
	Drafts         int             `json:"drafts"`
	Sent           int             `json:"sent"`
	Accepted       int             `json:"accepted"`
	Rejected       int             `json:"rejected"`
	Expired        int             `json:"expired"`
	Revenue        decimal.Decimal `json:"revenue"`
	RevenueLabel   string          `json:"revenue_label"`
	AcceptanceRate int             `json:"acceptance_rate"` // porcentaje redondeado
}
