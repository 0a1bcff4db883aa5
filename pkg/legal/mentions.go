package legal

import "fmt"

// Menciones fijas del presupuesto.
const (
	MentionAcceptance   = "L'acceptation du présent devis implique l'adhésion entière aux conditions générales de vente."
	MentionVATExemption = "TVA non applicable, art. 293 B du CGI (régime micro-entrepreneur)."
	MentionLatePayment  = "En cas de retard de paiement, des pénalités de retard au taux de 3 fois le taux d'intérêt légal seront applicables, ainsi qu'une indemnité forfaitaire de 40€ pour frais de recouvrement."
)

// ValidityMention frase de validez del presupuesto.
func ValidityMention(days int) string {
	return fmt.Sprintf("Ce devis est valable %d jours à compter de sa date d'émission.", days)
}

// Mentions devuelve las menciones legales en orden de impresión: validez, aceptación de
// las CGV, exención de IVA (solo Auto-entrepreneur), penalizaciones de retraso y, al final,
// las menciones personalizadas no vacías.
func Mentions(validityDays int, legalForm string, custom []string) []string {
	out := []string{ValidityMention(validityDays), MentionAcceptance}
	if legalForm == LegalFormAutoEntrepreneur {
		out = append(out, MentionVATExemption)
	}
	out = append(out, MentionLatePayment)
	for _, m := range custom {
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
