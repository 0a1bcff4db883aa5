package devis

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
)

func companyFromRequest(r dto.CompanyRequest) entity.Company {
	return entity.Company{
		Name:       r.Name,
		Address:    r.Address,
		PostalCode: r.PostalCode,
		City:       r.City,
		Phone:      r.Phone,
		Email:      r.Email,
		SIRET:      r.SIRET,
		VATNumber:  r.VATNumber,
		LegalForm:  r.LegalForm,
		Activity:   r.Activity,
	}
}

func clientFromRequest(r dto.ClientRequest) entity.Client {
	return entity.Client{
		Name:       r.Name,
		Address:    r.Address,
		PostalCode: r.PostalCode,
		City:       r.City,
		Phone:      r.Phone,
		Email:      r.Email,
		SIRET:      r.SIRET,
	}
}

// lineItemsFromRequest asigna IDs a las líneas nuevas y recalcula TotalHT.
func lineItemsFromRequest(items []dto.LineItemRequest) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(items))
	for _, it := range items {
		id := it.ID
		if id == "" {
			id = uuid.New().String()
		}
		out = append(out, totals.Recompute(entity.LineItem{
			ID:          id,
			Designation: it.Designation,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPriceHT: it.UnitPriceHT,
			VATRate:     it.VATRate,
		}))
	}
	return out
}

func conditionsFromRequest(r dto.ConditionsRequest, defaults entity.Conditions, notices []string) entity.Conditions {
	c := entity.Conditions{
		ValidityDays:   r.ValidityDays,
		ExecutionDelay: r.ExecutionDelay,
		PaymentTerms:   r.PaymentTerms,
		PaymentMethods: r.PaymentMethods,
		CustomNotices:  r.CustomNotices,
		Clauses:        r.Clauses,
	}
	if c.ValidityDays <= 0 {
		c.ValidityDays = defaults.ValidityDays
	}
	if c.ValidityDays <= 0 {
		c.ValidityDays = entity.DefaultValidityDays
	}
	if c.ExecutionDelay == "" {
		c.ExecutionDelay = defaults.ExecutionDelay
	}
	if c.PaymentTerms == "" {
		c.PaymentTerms = defaults.PaymentTerms
	}
	if len(c.PaymentMethods) == 0 {
		c.PaymentMethods = defaults.PaymentMethods
	}
	if len(c.CustomNotices) == 0 {
		c.CustomNotices = notices
	}
	if r.DepositPercent.IsPositive() {
		c.Deposit = &entity.Deposit{Percent: r.DepositPercent}
	}
	return c
}

func breakdownResponse(entries []entity.VATBreakdownEntry) []dto.VATBreakdownResponse {
	out := make([]dto.VATBreakdownResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.VATBreakdownResponse{
			Rate:          e.Rate,
			BaseHT:        e.BaseHT,
			VATAmount:     e.VATAmount,
			RateLabel:     totals.FormatPercentage(e.Rate),
			BaseLabel:     totals.FormatCurrency(e.BaseHT),
			VATAmountText: totals.FormatCurrency(e.VATAmount),
		})
	}
	return out
}

func formattedTotals(t entity.Totals) map[string]string {
	out := map[string]string{
		"total_ht":  totals.FormatCurrency(t.TotalHT),
		"total_vat": totals.FormatCurrency(t.TotalVAT),
		"total_ttc": totals.FormatCurrency(t.TotalTTC),
	}
	put := func(key string, d *decimal.Decimal) {
		if d != nil {
			out[key] = totals.FormatCurrency(*d)
		}
	}
	put("deposit_ht", t.DepositHT)
	put("deposit_vat", t.DepositVAT)
	put("deposit_ttc", t.DepositTTC)
	put("remaining_due", t.RemainingDue)
	return out
}

func toQuoteResponse(q entity.Quote, now time.Time) dto.QuoteResponse {
	return dto.QuoteResponse{
		Quote:           q,
		EffectiveStatus: q.EffectiveStatus(now),
		Breakdown:       breakdownResponse(totals.VATBreakdown(q.LineItems)),
	}
}
