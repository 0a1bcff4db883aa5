// Package totals calcula importes de línea, desglose de IVA por tipo y totales del presupuesto.
// Funciones puras: aritmética decimal exacta, redondeo a 2 decimales "half away from zero".
// Nunca devuelve error por entradas numéricas fuera de rango: negativos, NaN e infinitos se llevan a cero.
package totals

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/devis-api/internal/domain/entity"
)

const places = 2

var (
	hundred    = decimal.NewFromInt(100)
	maxDeposit = hundred
)

// Round redondea a 2 decimales, mitades lejos de cero. Idempotente.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(places)
}

// FromFloat convierte un float externo; NaN, ±Inf y negativos dan cero.
func FromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// LineTotalHT devuelve round(quantity × unitPrice).
func LineTotalHT(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return Round(nonNegative(quantity).Mul(nonNegative(unitPrice)))
}

// LineVAT devuelve round(lineTotalHT × ratePercent / 100).
func LineVAT(lineTotalHT, ratePercent decimal.Decimal) decimal.Decimal {
	return Round(nonNegative(lineTotalHT).Mul(nonNegative(ratePercent)).Div(hundred))
}

// Recompute devuelve la línea con TotalHT recalculado a partir de cantidad y precio.
func Recompute(item entity.LineItem) entity.LineItem {
	item.TotalHT = LineTotalHT(item.Quantity, item.UnitPriceHT)
	return item
}

// RecomputeAll recalcula TotalHT de todas las líneas sin modificar el slice de entrada.
func RecomputeAll(items []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, len(items))
	for i, it := range items {
		out[i] = Recompute(it)
	}
	return out
}

// VATBreakdown agrupa por tipo de IVA: bases e IVA de línea sumados sin redondear,
// un redondeo por grupo, orden ascendente por tipo.
func VATBreakdown(items []entity.LineItem) []entity.VATBreakdownEntry {
	groups := make(map[string]*entity.VATBreakdownEntry)
	for _, it := range items {
		rate := nonNegative(it.VATRate)
		base := LineTotalHT(it.Quantity, it.UnitPriceHT)
		// La clave normaliza 20, 20.0 y 20.00 al mismo grupo.
		key := rate.String()
		g, ok := groups[key]
		if !ok {
			g = &entity.VATBreakdownEntry{Rate: rate, BaseHT: decimal.Zero, VATAmount: decimal.Zero}
			groups[key] = g
		}
		g.BaseHT = g.BaseHT.Add(base)
		g.VATAmount = g.VATAmount.Add(LineVAT(base, rate))
	}

	out := make([]entity.VATBreakdownEntry, 0, len(groups))
	for _, g := range groups {
		out = append(out, entity.VATBreakdownEntry{
			Rate:      g.Rate,
			BaseHT:    Round(g.BaseHT),
			VATAmount: Round(g.VATAmount),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out
}

// ComputeTotals calcula HT, IVA y TTC y, si depositPercent > 0, el anticipo y el saldo.
// El porcentaje de anticipo se limita a 100. Con lista vacía todo es cero y sin anticipo.
func ComputeTotals(items []entity.LineItem, depositPercent decimal.Decimal) entity.Totals {
	if len(items) == 0 {
		return entity.Totals{TotalHT: decimal.Zero, TotalVAT: decimal.Zero, TotalTTC: decimal.Zero}
	}

	sumHT := decimal.Zero
	for _, it := range items {
		sumHT = sumHT.Add(LineTotalHT(it.Quantity, it.UnitPriceHT))
	}
	totalHT := Round(sumHT)

	totalVAT := decimal.Zero
	for _, g := range VATBreakdown(items) {
		totalVAT = totalVAT.Add(g.VATAmount)
	}

	t := entity.Totals{
		TotalHT:  totalHT,
		TotalVAT: totalVAT,
		TotalTTC: Round(totalHT.Add(totalVAT)),
	}

	pct := nonNegative(depositPercent)
	if !pct.IsPositive() {
		return t
	}
	if pct.GreaterThan(maxDeposit) {
		pct = maxDeposit
	}
	depHT := Round(totalHT.Mul(pct).Div(hundred))
	depVAT := Round(totalVAT.Mul(pct).Div(hundred))
	depTTC := Round(depHT.Add(depVAT))
	remaining := Round(t.TotalTTC.Sub(depTTC))
	t.DepositHT = &depHT
	t.DepositVAT = &depVAT
	t.DepositTTC = &depTTC
	t.RemainingDue = &remaining
	return t
}
