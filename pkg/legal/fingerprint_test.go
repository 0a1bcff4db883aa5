package legal_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/devis-api/pkg/legal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Vector de referencia calculado con SHA-384 sobre la cadena:
//
//	"DEVIS-2025-0007" + "2025-03-15" + "350.00" + "65.00" + "415.00" +
//	"73282932000074" + "Jean Martin"
// ──────────────────────────────────────────────────────────────────────────────

const fingerprintExpected = "2705760ebaf4b438b610c49d831e93c8d6c024a0fefa91ddab771412888c7854852b8c1a67941b541a3988921ec720a0"

func buildFingerprintParams() *legal.FingerprintParams {
	return &legal.FingerprintParams{
		Number:      "DEVIS-2025-0007",
		IssueDate:   "2025-03-15",
		TotalHT:     decimal.NewFromInt(350),
		TotalVAT:    decimal.NewFromInt(65),
		TotalTTC:    decimal.NewFromInt(415),
		IssuerSIRET: "732 829 320 00074",
		ClientName:  "  Jean   Martin ",
	}
}

func TestFingerprint_VectorExacto(t *testing.T) {
	fp, err := legal.Fingerprint(buildFingerprintParams())
	require.NoError(t, err, "Fingerprint no debe fallar con parámetros válidos")
	assert.Equal(t, fingerprintExpected, fp, "espacios del SIRET y del cliente se normalizan")
}

func TestFingerprint_SensibleAlTotal(t *testing.T) {
	p1 := buildFingerprintParams()
	p2 := buildFingerprintParams()
	p2.TotalTTC = decimal.RequireFromString("415.01")

	fp1, _ := legal.Fingerprint(p1)
	fp2, _ := legal.Fingerprint(p2)
	assert.NotEqual(t, fp1, fp2, "un céntimo cambia la huella")
}

func TestFingerprint_Errores(t *testing.T) {
	_, err := legal.Fingerprint(nil)
	assert.Error(t, err)

	p := buildFingerprintParams()
	p.Number = "   "
	_, err = legal.Fingerprint(p)
	assert.Error(t, err, "Number es obligatorio")

	p = buildFingerprintParams()
	p.IssueDate = ""
	_, err = legal.Fingerprint(p)
	assert.Error(t, err, "IssueDate es obligatorio")
}
