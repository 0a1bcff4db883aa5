package entity

import "github.com/shopspring/decimal"

// Deposit es el anticipo solicitado, en porcentaje del total.
type Deposit struct {
	Percent decimal.Decimal `json:"percent"`
}

// LegalClauses agrupa las cláusulas opcionales impresas en las condiciones.
type LegalClauses struct {
	Confidentiality      bool   `json:"confidentiality"`
	NonCompete           bool   `json:"non_compete"`
	NonCompeteMonths     int    `json:"non_compete_months,omitempty"`
	LiabilityLimitation  bool   `json:"liability_limitation"`
	ProfessionalWarranty string `json:"professional_warranty,omitempty"`
	LiabilityInsurance   bool   `json:"liability_insurance"`
	WithdrawalRight      bool   `json:"withdrawal_right"`
	DataProcessing       bool   `json:"data_processing"`
	DataRetention        string `json:"data_retention,omitempty"`
	ApplicableLaw        string `json:"applicable_law,omitempty"`
	Jurisdiction         string `json:"jurisdiction,omitempty"`
}

// Conditions son las condiciones comerciales del presupuesto.
type Conditions struct {
	ValidityDays   int           `json:"validity_days"`
	ExecutionDelay string        `json:"execution_delay"`
	PaymentTerms   string        `json:"payment_terms"`
	PaymentMethods []string      `json:"payment_methods"`
	Deposit        *Deposit      `json:"deposit,omitempty"`
	CustomNotices  []string      `json:"custom_notices,omitempty"`
	Clauses        *LegalClauses `json:"clauses,omitempty"`
}

// DepositPercent devuelve el porcentaje de anticipo o cero si no hay.
func (c Conditions) DepositPercent() decimal.Decimal {
	if c.Deposit == nil {
		return decimal.Zero
	}
	return c.Deposit.Percent
}

// DefaultValidityDays validez por defecto de un presupuesto.
const DefaultValidityDays = 30

// DefaultConditions condiciones aplicadas cuando el almacenamiento está vacío.
func DefaultConditions() Conditions {
	return Conditions{
		ValidityDays:   DefaultValidityDays,
		ExecutionDelay: "2 semaines",
		PaymentTerms:   "Paiement à 30 jours",
		PaymentMethods: []string{"Virement bancaire", "Chèque"},
	}
}

// DefaultLegalClauses valores por defecto de las cláusulas opcionales.
func DefaultLegalClauses() LegalClauses {
	return LegalClauses{
		Confidentiality:      true,
		NonCompeteMonths:     12,
		LiabilityLimitation:  true,
		ProfessionalWarranty: "1 an",
		LiabilityInsurance:   true,
		WithdrawalRight:      true,
		DataProcessing:       true,
		DataRetention:        "3 ans",
		ApplicableLaw:        "Droit français",
		Jurisdiction:         "Tribunaux français",
	}
}
