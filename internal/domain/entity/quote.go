package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del presupuesto. Expiré nunca se almacena: se deriva de la fecha de validez.
const (
	QuoteStatusDraft    = "Brouillon"
	QuoteStatusSent     = "Envoyé"
	QuoteStatusAccepted = "Accepté"
	QuoteStatusRejected = "Refusé"
	QuoteStatusExpired  = "Expiré"
)

// Totals son los totales calculados de un presupuesto.
// Los campos de anticipo son nil cuando no se solicita anticipo.
type Totals struct {
	TotalHT      decimal.Decimal  `json:"total_ht"`
	TotalVAT     decimal.Decimal  `json:"total_vat"`
	TotalTTC     decimal.Decimal  `json:"total_ttc"`
	DepositHT    *decimal.Decimal `json:"deposit_ht,omitempty"`
	DepositVAT   *decimal.Decimal `json:"deposit_vat,omitempty"`
	DepositTTC   *decimal.Decimal `json:"deposit_ttc,omitempty"`
	RemainingDue *decimal.Decimal `json:"remaining_due,omitempty"`
}

// HasDeposit indica si los totales incluyen anticipo.
func (t Totals) HasDeposit() bool {
	return t.DepositTTC != nil
}

// VATBreakdownEntry agrupa base e IVA por tipo impositivo.
type VATBreakdownEntry struct {
	Rate      decimal.Decimal `json:"rate"`
	BaseHT    decimal.Decimal `json:"base_ht"`
	VATAmount decimal.Decimal `json:"vat_amount"`
}

// Quote representa un presupuesto guardado.
type Quote struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"` // DEVIS-YYYY-NNNN
	Status       string     `json:"status"`
	IssueDate    time.Time  `json:"issue_date"`
	ValidityDate time.Time  `json:"validity_date"`
	Company      Company    `json:"company"`
	Client       Client     `json:"client"`
	LineItems    []LineItem `json:"line_items"`
	Conditions   Conditions `json:"conditions"`
	Totals       Totals     `json:"totals"`
	Subject      string     `json:"subject,omitempty"`
	Comments     string     `json:"comments,omitempty"`
	ModifiedAt   time.Time  `json:"modified_at"`
	Version      int        `json:"version"`
}

// EffectiveStatus devuelve el estado visible: Expiré si fue enviado y la validez ya pasó.
func EffectiveStatus(status string, validity, now time.Time) string {
	if status == QuoteStatusSent && validity.Before(now) {
		return QuoteStatusExpired
	}
	return status
}

// EffectiveStatus aplica EffectiveStatus al presupuesto.
func (q Quote) EffectiveStatus(now time.Time) string {
	return EffectiveStatus(q.Status, q.ValidityDate, now)
}

// QuoteDraft son los datos del formulario sin guardar. Los bloques pueden estar incompletos.
type QuoteDraft struct {
	Company    Company    `json:"company"`
	Client     Client     `json:"client"`
	LineItems  []LineItem `json:"line_items"`
	Conditions Conditions `json:"conditions"`
	Subject    string     `json:"subject,omitempty"`
	Comments   string     `json:"comments,omitempty"`
}

// DraftFromQuote copia un presupuesto en un borrador editable.
func DraftFromQuote(q Quote) QuoteDraft {
	items := make([]LineItem, len(q.LineItems))
	copy(items, q.LineItems)
	return QuoteDraft{
		Company:    q.Company,
		Client:     q.Client,
		LineItems:  items,
		Conditions: q.Conditions,
		Subject:    q.Subject,
		Comments:   q.Comments,
	}
}
