package devis

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
)

// Stats cuenta los presupuestos por estado efectivo. La facturación es la suma TTC de
// los aceptados y la tasa de aceptación se calcula sobre los decididos (aceptados + rechazados).
func (uc *QuoteUseCase) Stats(ctx context.Context) (*dto.QuoteStatsResponse, error) {
	quotes, err := uc.store.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("devis: estadísticas: %w", err)
	}

	now := uc.now()
	st := &dto.QuoteStatsResponse{Total: len(quotes), Revenue: decimal.Zero}
	for _, q := range quotes {
		switch q.EffectiveStatus(now) {
		case entity.QuoteStatusDraft:
			st.Drafts++
		case entity.QuoteStatusSent:
			st.Sent++
		case entity.QuoteStatusAccepted:
			st.Accepted++
			st.Revenue = st.Revenue.Add(q.Totals.TotalTTC)
		case entity.QuoteStatusRejected:
			st.Rejected++
		case entity.QuoteStatusExpired:
			st.Expired++
		}
	}
	if decided := st.Accepted + st.Rejected; decided > 0 {
		st.AcceptanceRate = int(decimal.NewFromInt(int64(st.Accepted * 100)).
			Div(decimal.NewFromInt(int64(decided))).Round(0).IntPart())
	}
	st.Revenue = totals.Round(st.Revenue)
	st.RevenueLabel = totals.FormatCurrency(st.Revenue)
	return st, nil
}
