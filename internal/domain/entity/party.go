package entity

import "github.com/jhoicas/devis-api/pkg/legal"

// Company representa la empresa emisora del presupuesto.
type Company struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	SIRET      string `json:"siret"`
	VATNumber  string `json:"vat_number,omitempty"` // Número de IVA intracomunitario (FRxx + SIREN)
	LegalForm  string `json:"legal_form"`           // ver legal.LegalForm*
	Activity   string `json:"activity,omitempty"`
}

// IsMicroEnterprise indica si el emisor está en régimen de franquicia de IVA (art. 293 B CGI).
func (c Company) IsMicroEnterprise() bool {
	return c.LegalForm == legal.LegalFormAutoEntrepreneur
}

// Client representa el destinatario del presupuesto. SIRET es opcional (particulares).
type Client struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	SIRET      string `json:"siret,omitempty"`
}
