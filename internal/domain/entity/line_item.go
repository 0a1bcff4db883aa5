package entity

import (
	"github.com/shopspring/decimal"
)

// LineItem es una línea de prestación del presupuesto.
// TotalHT es un valor derivado: round(Quantity × UnitPriceHT).
type LineItem struct {
	ID          string          `json:"id"`
	Designation string          `json:"designation"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"` // ver legal.Unit*
	UnitPriceHT decimal.Decimal `json:"unit_price_ht"`
	VATRate     decimal.Decimal `json:"vat_rate"` // porcentaje: 0, 5.5, 10, 20
	TotalHT     decimal.Decimal `json:"total_ht"`
}
