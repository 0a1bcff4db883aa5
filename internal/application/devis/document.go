package devis

import (
	"fmt"

	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
	"github.com/jhoicas/devis-api/pkg/legal"
)

// PreviewNumber número mostrado en la vista previa de un borrador.
const PreviewNumber = "APERÇU"

// QuoteDocument es todo lo que necesita un renderizador (PDF, UBL): el presupuesto,
// su desglose de IVA ordenado, las menciones legales y la huella.
type QuoteDocument struct {
	Quote       entity.Quote
	Breakdown   []entity.VATBreakdownEntry
	Mentions    []string
	Fingerprint string
	Preview     bool
}

// ShowVATRecap indica si se imprime el cuadro de IVA (más de un tipo).
func (d *QuoteDocument) ShowVATRecap() bool {
	return len(d.Breakdown) > 1
}

// NewQuoteDocument construye el documento a partir de un presupuesto ya calculado.
func NewQuoteDocument(q entity.Quote, preview bool) (*QuoteDocument, error) {
	doc := &QuoteDocument{
		Quote:     q,
		Breakdown: totals.VATBreakdown(q.LineItems),
		Mentions:  legal.Mentions(q.Conditions.ValidityDays, q.Company.LegalForm, q.Conditions.CustomNotices),
		Preview:   preview,
	}
	if preview {
		return doc, nil
	}
	fp, err := legal.Fingerprint(&legal.FingerprintParams{
		Number:      q.Number,
		IssueDate:   q.IssueDate.Format("2006-01-02"),
		TotalHT:     q.Totals.TotalHT,
		TotalVAT:    q.Totals.TotalVAT,
		TotalTTC:    q.Totals.TotalTTC,
		IssuerSIRET: q.Company.SIRET,
		ClientName:  q.Client.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("documento: huella: %w", err)
	}
	doc.Fingerprint = fp
	return doc, nil
}
