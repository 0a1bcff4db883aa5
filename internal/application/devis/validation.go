package devis

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/pkg/legal"
)

// Validator valida los DTO de entrada con go-playground/validator y las reglas propias
// (siret, postalcode, frphone, unit, vatrate, legalform).
type Validator struct {
	v *validator.Validate
}

// NewValidator registra las reglas propias y el nombre JSON de los campos.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Los importes decimales se validan como float64 (gt, min, max, vatrate).
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("siret", func(fl validator.FieldLevel) bool {
		return legal.ValidateSIRET(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("postalcode", func(fl validator.FieldLevel) bool {
		return legal.ValidatePostalCode(fl.Field().String())
	})
	_ = v.RegisterValidation("frphone", func(fl validator.FieldLevel) bool {
		return legal.ValidatePhone(fl.Field().String())
	})
	_ = v.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		return legal.ValidUnits[fl.Field().String()]
	})
	_ = v.RegisterValidation("legalform", func(fl validator.FieldLevel) bool {
		return legal.ValidLegalForms[fl.Field().String()]
	})
	_ = v.RegisterValidation("vatrate", func(fl validator.FieldLevel) bool {
		return legal.IsValidVATRate(decimal.NewFromFloat(fl.Field().Float()))
	})

	return &Validator{v: v}
}

// Struct valida s y convierte los errores en domain.ValidationErrors.
func (val *Validator) Struct(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	out := make(domain.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: message(fe),
			Code:    fe.Tag(),
		})
	}
	return out
}

// fieldPath quita el nombre del struct raíz: "QuoteRequest.client.name" → "client.name".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obligatorio"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "se requiere al menos " + fe.Param() + " elemento(s)"
		}
		return "valor mínimo " + fe.Param()
	case "max":
		if fe.Kind() == reflect.Slice {
			return "máximo " + fe.Param() + " elementos"
		}
		if fe.Kind() == reflect.String {
			return "máximo " + fe.Param() + " caracteres"
		}
		return "valor máximo " + fe.Param()
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "email":
		return "email inválido"
	case "siret":
		return "SIRET inválido (14 dígitos, clave de control)"
	case "postalcode":
		return "código postal inválido (5 dígitos)"
	case "frphone":
		return "teléfono inválido"
	case "unit":
		return "unidad no admitida (Heure, Jour, Forfait, Unité)"
	case "vatrate":
		return "tipo de IVA no admitido (0, 5.5, 10, 20)"
	case "legalform":
		return "forma jurídica no admitida"
	default:
		return "valor inválido"
	}
}
