package legal

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode"
)

// SIREN de La Poste: sus SIRET no cumplen Luhn y usan la regla "suma de dígitos múltiplo de 5".
const laPosteSIREN = "356000000"

var (
	postalCodeRe = regexp.MustCompile(`^\d{5}$`)
	phoneRe      = regexp.MustCompile(`^(?:\+33|0)[1-9]\d{8}$`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateSIRET valida un SIRET de 14 dígitos (espacios permitidos) con la clave de Luhn.
func ValidateSIRET(siret string) error {
	digits := extractDigits(siret)
	if len(digits) != 14 || len(digits) != countNonSpace(siret) {
		return fmt.Errorf("legal: el SIRET debe tener 14 dígitos, se encontraron %d", len(digits))
	}
	if string(digits[:9]) == laPosteSIREN {
		if digitSum(digits)%5 == 0 {
			return nil
		}
		return fmt.Errorf("legal: SIRET de La Poste inválido")
	}
	if !luhn(digits) {
		return fmt.Errorf("legal: clave de control del SIRET inválida")
	}
	return nil
}

// ValidateSIREN valida un SIREN de 9 dígitos con la clave de Luhn.
func ValidateSIREN(siren string) error {
	digits := extractDigits(siren)
	if len(digits) != 9 || len(digits) != countNonSpace(siren) {
		return fmt.Errorf("legal: el SIREN debe tener 9 dígitos, se encontraron %d", len(digits))
	}
	if !luhn(digits) {
		return fmt.Errorf("legal: clave de control del SIREN inválida")
	}
	return nil
}

// ComputeVATNumber calcula el número de IVA intracomunitario a partir del SIREN (o SIRET):
// FR + clave (12 + 3 × (SIREN mod 97)) mod 97 + SIREN.
func ComputeVATNumber(sirenOrSiret string) (string, error) {
	digits := extractDigits(sirenOrSiret)
	if len(digits) != 9 && len(digits) != 14 {
		return "", fmt.Errorf("legal: se requiere un SIREN (9) o SIRET (14), se encontraron %d dígitos", len(digits))
	}
	siren := string(digits[:9])
	n, err := strconv.Atoi(siren)
	if err != nil {
		return "", fmt.Errorf("legal: SIREN inválido: %w", err)
	}
	key := (12 + 3*(n%97)) % 97
	return fmt.Sprintf("FR%02d%s", key, siren), nil
}

// ValidatePostalCode valida un código postal francés de 5 dígitos.
func ValidatePostalCode(cp string) bool {
	return postalCodeRe.MatchString(cp)
}

// ValidatePhone valida un teléfono francés (0X XX XX XX XX o +33), se ignoran espacios, puntos y guiones.
func ValidatePhone(phone string) bool {
	var b []rune
	for _, r := range phone {
		if r == ' ' || r == '.' || r == '-' {
			continue
		}
		b = append(b, r)
	}
	return phoneRe.MatchString(string(b))
}

// ValidateEmail validación laxa de email.
func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

func luhn(digits []byte) bool {
	var sum int
	double := len(digits)%2 == 0
	for _, d := range digits {
		n := int(d - '0')
		if double {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
		double = !double
	}
	return sum%10 == 0
}

func digitSum(digits []byte) int {
	var sum int
	for _, d := range digits {
		sum += int(d - '0')
	}
	return sum
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, byte(r))
		}
	}
	return out
}

func countNonSpace(s string) int {
	var n int
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
