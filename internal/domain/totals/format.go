package totals

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Separadores fr-FR: espacio fino no separable (U+202F) para miles y antes de "%",
// espacio no separable (U+00A0) antes de "€".
const (
	nbsp       = "\u00a0"
	narrowNbsp = "\u202f"
)

var euroFormatter = money.NewFormatter(2, ",", narrowNbsp, money.GetCurrency(money.EUR).Grapheme, "1"+nbsp+"$")

// FormatCurrency formatea un importe en euros al estilo fr-FR: "1 234,56 €".
// Solo para mostrar; nunca se vuelve a parsear.
func FormatCurrency(amount decimal.Decimal) string {
	return euroFormatter.Format(MinorUnits(amount))
}

// MinorUnits devuelve el importe redondeado en céntimos.
func MinorUnits(amount decimal.Decimal) int64 {
	return Round(amount).Shift(2).IntPart()
}

// FormatPercentage formatea un porcentaje al estilo fr-FR con hasta 2 decimales: "5,5 %".
func FormatPercentage(value decimal.Decimal) string {
	s := value.Round(2).String()
	return strings.Replace(s, ".", ",", 1) + narrowNbsp + "%"
}
