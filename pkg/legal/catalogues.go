// Package legal contiene catálogos y validaciones del presupuesto comercial francés:
// unidades, tipos de IVA, formas jurídicas, SIRET/SIREN, número de IVA intracomunitario
// y menciones legales obligatorias.
package legal

import "github.com/shopspring/decimal"

// =============================================================================
// Unidades de medida de las líneas
// =============================================================================

const (
	UnitHour    = "Heure"
	UnitDay     = "Jour"
	UnitFlatFee = "Forfait"
	UnitPiece   = "Unité"
)

// ValidUnits unidades admitidas.
var ValidUnits = map[string]bool{
	UnitHour: true, UnitDay: true, UnitFlatFee: true, UnitPiece: true,
}

// UNECEUnitCodes códigos UN/ECE Rec 20 usados en la exportación UBL.
var UNECEUnitCodes = map[string]string{
	UnitHour:    "HUR",
	UnitDay:     "DAY",
	UnitFlatFee: "LS", // lump sum
	UnitPiece:   "C62",
}

// =============================================================================
// Tipos de IVA (CGI art. 278 y siguientes)
// =============================================================================

var (
	VATRateZero         = decimal.Zero
	VATRateSuperReduced = decimal.RequireFromString("5.5")
	VATRateIntermediate = decimal.NewFromInt(10)
	VATRateStandard     = decimal.NewFromInt(20)
)

// VATRates tipos admitidos, en orden ascendente.
var VATRates = []decimal.Decimal{VATRateZero, VATRateSuperReduced, VATRateIntermediate, VATRateStandard}

// IsValidVATRate indica si el tipo es uno de los admitidos.
func IsValidVATRate(rate decimal.Decimal) bool {
	for _, r := range VATRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// VATCategoryCode categoría UNCL5305 para la exportación UBL: S estándar, Z tipo cero.
func VATCategoryCode(rate decimal.Decimal) string {
	if rate.IsZero() {
		return "Z"
	}
	return "S"
}

// =============================================================================
// Formas jurídicas
// =============================================================================

const (
	LegalFormAutoEntrepreneur = "Auto-entrepreneur"
	LegalFormEURL             = "EURL"
	LegalFormSASU             = "SASU"
	LegalFormSAS              = "SAS"
	LegalFormSARL             = "SARL"
)

// ValidLegalForms formas jurídicas admitidas.
var ValidLegalForms = map[string]bool{
	LegalFormAutoEntrepreneur: true,
	LegalFormEURL:             true,
	LegalFormSASU:             true,
	LegalFormSAS:              true,
	LegalFormSARL:             true,
}

// =============================================================================
// Modalidades de pago habituales
// =============================================================================

const (
	PaymentMethodTransfer = "Virement bancaire"
	PaymentMethodCheque   = "Chèque"
	PaymentMethodCash     = "Espèces"
	PaymentMethodCard     = "Carte bancaire"
	PaymentMethodPayPal   = "PayPal"
)

// PaymentMethods modalidades sugeridas en el formulario.
var PaymentMethods = []string{
	PaymentMethodTransfer, PaymentMethodCheque, PaymentMethodCash, PaymentMethodCard, PaymentMethodPayPal,
}

// PaymentMeansCodes códigos UNCL4461 de medio de pago para la exportación UBL.
var PaymentMeansCodes = map[string]string{
	PaymentMethodTransfer: "30",
	PaymentMethodCheque:   "20",
	PaymentMethodCash:     "10",
	PaymentMethodCard:     "48",
}
