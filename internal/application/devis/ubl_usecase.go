package devis

import (
	"context"
	"fmt"

	"github.com/jhoicas/devis-api/pkg/logger"
)

// UBLUseCase exporta un presupuesto guardado como UBL 2.1 Quotation.
type UBLUseCase struct {
	store   QuoteStore
	builder QuoteXMLBuilder
	log     *logger.Logger
	obs     Observer
}

func NewUBLUseCase(store QuoteStore, builder QuoteXMLBuilder, log *logger.Logger, obs Observer) *UBLUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return &UBLUseCase{store: store, builder: builder, log: log, obs: obs}
}

// QuoteXML devuelve el XML canónico y el nombre de archivo devis_<número>.xml.
func (uc *UBLUseCase) QuoteXML(ctx context.Context, id string) ([]byte, string, error) {
	q, err := uc.store.GetQuote(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc, err := NewQuoteDocument(q, false)
	if err != nil {
		return nil, "", err
	}
	xml, err := uc.builder.BuildQuotation(doc)
	if err != nil {
		return nil, "", fmt.Errorf("ubl: %s: %w", q.Number, err)
	}
	uc.obs.DocumentRendered("ubl")
	return xml, "devis_" + q.Number + ".xml", nil
}
