package legal

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var spacesRe = regexp.MustCompile(`\s+`)

// FingerprintParams datos que identifican el contenido económico de un presupuesto.
type FingerprintParams struct {
	Number      string          // DEVIS-YYYY-NNNN
	IssueDate   string          // YYYY-MM-DD
	TotalHT     decimal.Decimal
	TotalVAT    decimal.Decimal
	TotalTTC    decimal.Decimal
	IssuerSIRET string
	ClientName  string
}

// Fingerprint calcula la huella del presupuesto: SHA-384 en hexadecimal (minúsculas) sobre
// Number + IssueDate + TotalHT + TotalVAT + TotalTTC + SIRET (solo dígitos) + ClientName,
// importes con punto decimal y 2 decimales. Se imprime en el PDF y en su código QR.
func Fingerprint(p *FingerprintParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("legal: FingerprintParams es obligatorio")
	}
	number := spacesRe.ReplaceAllString(strings.TrimSpace(p.Number), "")
	if number == "" {
		return "", fmt.Errorf("legal: Number es obligatorio")
	}
	if p.IssueDate == "" {
		return "", fmt.Errorf("legal: IssueDate es obligatorio")
	}

	chain := number +
		p.IssueDate +
		formatAmount(p.TotalHT) +
		formatAmount(p.TotalVAT) +
		formatAmount(p.TotalTTC) +
		string(extractDigits(p.IssuerSIRET)) +
		spacesRe.ReplaceAllString(strings.TrimSpace(p.ClientName), " ")

	hash := sha512.Sum384([]byte(chain))
	return hex.EncodeToString(hash[:]), nil
}

// formatAmount sin separador de miles, punto decimal, 2 decimales.
func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
