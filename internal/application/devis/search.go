package devis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// Criterios de orden admitidos por List.
const (
	SortByDate   = "date"
	SortByNumber = "number"
	SortByClient = "client"
	SortByAmount = "amount"
)

// quoteFilter es QuoteListFilter ya interpretado.
type quoteFilter struct {
	status    string
	query     string
	from, to  *time.Time
	min, max  *decimal.Decimal
	sortBy    string
	ascending bool
}

func parseFilter(f dto.QuoteListFilter) (quoteFilter, error) {
	out := quoteFilter{
		status: f.Status,
		query:  fold(strings.TrimSpace(f.Query)),
		sortBy: f.SortBy,
	}
	var errs domain.ValidationErrors

	switch f.Status {
	case "", entity.QuoteStatusDraft, entity.QuoteStatusSent, entity.QuoteStatusAccepted,
		entity.QuoteStatusRejected, entity.QuoteStatusExpired:
	default:
		errs = append(errs, domain.FieldError{Field: "status", Message: "estado desconocido", Code: "oneof"})
	}

	parseDate := func(field, raw string) *time.Time {
		if raw == "" {
			return nil
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			errs = append(errs, domain.FieldError{Field: field, Message: "fecha inválida (YYYY-MM-DD)", Code: "date"})
			return nil
		}
		return &t
	}
	out.from = parseDate("from", f.From)
	out.to = parseDate("to", f.To)

	parseAmount := func(field, raw string) *decimal.Decimal {
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
		if err != nil {
			errs = append(errs, domain.FieldError{Field: field, Message: "importe inválido", Code: "decimal"})
			return nil
		}
		return &d
	}
	out.min = parseAmount("min_amount", f.MinAmount)
	out.max = parseAmount("max_amount", f.MaxAmount)

	switch f.SortBy {
	case "":
		out.sortBy = SortByDate
	case SortByDate, SortByNumber, SortByClient, SortByAmount:
	default:
		errs = append(errs, domain.FieldError{Field: "sort", Message: "criterio de orden desconocido", Code: "oneof"})
	}
	switch strings.ToLower(f.SortOrder) {
	case "", "desc":
	case "asc":
		out.ascending = true
	default:
		errs = append(errs, domain.FieldError{Field: "order", Message: "orden asc o desc", Code: "oneof"})
	}

	if len(errs) > 0 {
		return quoteFilter{}, errs
	}
	return out, nil
}

// List devuelve los presupuestos que cumplen el filtro. Sin criterio de orden explícito
// se conserva el orden del almacén (más recientes primero).
func (uc *QuoteUseCase) List(ctx context.Context, f dto.QuoteListFilter) ([]dto.QuoteResponse, error) {
	filter, err := parseFilter(f)
	if err != nil {
		return nil, err
	}
	quotes, err := uc.store.ListQuotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("devis: listar: %w", err)
	}

	now := uc.now()
	out := make([]dto.QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		if filter.matches(q, now) {
			out = append(out, toQuoteResponse(q, now))
		}
	}
	if f.SortBy != "" || filter.ascending {
		sortQuotes(out, filter.sortBy, filter.ascending)
	}
	return out, nil
}

func (f quoteFilter) matches(q entity.Quote, now time.Time) bool {
	if f.status != "" && q.EffectiveStatus(now) != f.status {
		return false
	}
	if f.query != "" {
		hay := fold(q.Number + " " + q.Client.Name + " " + q.Subject + " " + q.Company.Name)
		if !strings.Contains(hay, f.query) {
			return false
		}
	}
	day := truncateDay(q.IssueDate)
	if f.from != nil && day.Before(*f.from) {
		return false
	}
	if f.to != nil && day.After(*f.to) {
		return false
	}
	if f.min != nil && q.Totals.TotalTTC.LessThan(*f.min) {
		return false
	}
	if f.max != nil && q.Totals.TotalTTC.GreaterThan(*f.max) {
		return false
	}
	return true
}

func sortQuotes(list []dto.QuoteResponse, by string, asc bool) {
	less := func(a, b dto.QuoteResponse) bool {
		switch by {
		case SortByNumber:
			return a.Number < b.Number
		case SortByClient:
			return fold(a.Client.Name) < fold(b.Client.Name)
		case SortByAmount:
			return a.Totals.TotalTTC.LessThan(b.Totals.TotalTTC)
		default:
			return a.IssueDate.Before(b.IssueDate)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if asc {
			return less(list[i], list[j])
		}
		return less(list[j], list[i])
	})
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fold normaliza para búsqueda: minúsculas y sin diacríticos ("Élodie" → "elodie").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
