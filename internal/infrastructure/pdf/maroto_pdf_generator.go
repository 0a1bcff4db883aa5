// Package pdf genera el presupuesto (devis) en PDF A4 con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  CABECERA: Emisor + SIRET       │  DEVIS N° + fechas         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ÉMETTEUR: dirección / TVA / forma jurídica                  │
//	│  DESTINATAIRE: cliente + dirección                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Désignation | Qté | Unité | P.U. HT | TVA | Total HT │
//	│  RÉCAPITULATIF TVA (solo con más de un tipo)                 │
//	│  TOTALES: HT / TVA / TTC / Acompte / Reste à payer           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONDITIONS + MENTIONS LÉGALES                               │
//	│  PIE: huella + QR │ "Bon pour accord"                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 30, Green: 58, Blue: 138}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const dateFR = "02/01/2006"

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa devis.QuotePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

var _ devis.QuotePDFGenerator = (*MarotoPDFGenerator)(nil)

// GenerateQuotePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateQuotePDF(ctx context.Context, doc *devis.QuoteDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := doc.Quote

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Devis "+q.Number, true).
		WithAuthor(q.Company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(q))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(q.Company, q.Client))
	if q.Subject != "" {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Objet : "+q.Subject, props.Text{Style: fontstyle.Bold, Size: 10, Top: 2}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	// Prestaciones
	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(q.LineItems)...)

	// Totales
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	if doc.ShowVATRecap() {
		m.AddRows(vatRecapRows(doc.Breakdown)...)
	}
	m.AddRows(totalsRows(q.Totals, q.Conditions.DepositPercent().String())...)

	// Condiciones y menciones
	m.AddRows(row.New(4))
	m.AddRows(conditionsRows(q)...)
	m.AddRows(mentionRows(doc.Mentions)...)

	// Pie
	m.AddRows(row.New(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y número + fechas (der).
func headerRow(q entity.Quote) core.Row {
	return row.New(22).Add(
		col.New(7).Add(
			text.New(q.Company.Name, props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(q.Company.Activity, ""), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("DEVIS", props.Text{
				Style: fontstyle.Bold, Size: 16, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+q.Number, props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 9,
			}),
			text.New(fmt.Sprintf("Date : %s   Valable jusqu'au : %s",
				q.IssueDate.Format(dateFR), q.ValidityDate.Format(dateFR),
			), props.Text{Size: 8, Align: align.Right, Top: 15, Color: colorGray}),
		),
	)
}

// partiesRow: bloque emisor (izq) y destinatario (der).
func partiesRow(c entity.Company, cl entity.Client) core.Row {
	issuer := []string{
		c.Address,
		strings.TrimSpace(c.PostalCode + " " + c.City),
		"SIRET : " + nonEmpty(c.SIRET, "non renseigné"),
	}
	if c.VATNumber != "" {
		issuer = append(issuer, "TVA intracom. : "+c.VATNumber)
	}
	if c.LegalForm != "" {
		issuer = append(issuer, c.LegalForm)
	}
	issuer = append(issuer, contact(c.Phone, c.Email))

	client := []string{
		cl.Address,
		strings.TrimSpace(cl.PostalCode + " " + cl.City),
	}
	if cl.SIRET != "" {
		client = append(client, "SIRET : "+cl.SIRET)
	}
	client = append(client, contact(cl.Phone, cl.Email))

	return row.New(34).Add(
		col.New(6).Add(block("ÉMETTEUR", c.Name, issuer)...),
		col.New(6).Add(block("DESTINATAIRE", cl.Name, client)...),
	)
}

func block(title, name string, lines []string) []core.Component {
	out := []core.Component{
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
	}
	top := 11.0
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, text.New(l, props.Text{Size: 8, Top: top, Color: colorGray}))
		top += 4
	}
	return out
}

func contact(phone, email string) string {
	parts := make([]string, 0, 2)
	if phone != "" {
		parts = append(parts, "Tél. "+phone)
	}
	if email != "" {
		parts = append(parts, email)
	}
	return strings.Join(parts, "   |   ")
}

// tableHeaderRow: cabecera de la tabla de prestaciones.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Désignation", 5, align.Left),
		h("Qté", 1, align.Center),
		h("Unité", 1, align.Center),
		h("P.U. HT", 2, align.Right),
		h("TVA", 1, align.Center),
		h("Total HT", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea.
func tableDetailRows(items []entity.LineItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(5).Add(text.New(it.Designation, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(quantity(it), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(it.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(euros(it.UnitPriceHT), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(percent(it.VATRate), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(euros(it.TotalHT), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func quantity(it entity.LineItem) string {
	return strings.ReplaceAll(it.Quantity.String(), ".", ",")
}

// vatRecapRows: cuadro de IVA por tipo.
func vatRecapRows(entries []entity.VATBreakdownEntry) []core.Row {
	small := func(s string, a align.Type, style fontstyle.Type) core.Component {
		return text.New(s, props.Text{Size: 8, Align: a, Style: style, Top: 1, Right: 1})
	}
	rows := []core.Row{
		row.New(6).Add(
			col.New(6),
			col.New(2).Add(small("Taux", align.Center, fontstyle.Bold)),
			col.New(2).Add(small("Base HT", align.Right, fontstyle.Bold)),
			col.New(2).Add(small("Montant TVA", align.Right, fontstyle.Bold)),
		),
	}
	for _, e := range entries {
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(2).Add(small(percent(e.Rate), align.Center, fontstyle.Normal)),
			col.New(2).Add(small(euros(e.BaseHT), align.Right, fontstyle.Normal)),
			col.New(2).Add(small(euros(e.VATAmount), align.Right, fontstyle.Normal)),
		))
	}
	return append(rows, row.New(3))
}

// totalsRows: bloque de totales alineado a la derecha; anticipo y saldo si aplica.
func totalsRows(t entity.Totals, depositPercent string) []core.Row {
	entry := func(label, value string, grand bool) core.Row {
		p := props.Text{Size: 9, Align: align.Right, Right: 1}
		if grand {
			p = props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Right: 1}
		}
		lp := p
		lp.Style = fontstyle.Bold
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, lp)),
			col.New(3).Add(text.New(value, p)),
		)
	}
	rows := []core.Row{
		entry("Total HT", euros(t.TotalHT), false),
		entry("TVA", euros(t.TotalVAT), false),
		entry("Total TTC", euros(t.TotalTTC), true),
	}
	if t.HasDeposit() {
		rows = append(rows,
			entry("Acompte "+strings.ReplaceAll(depositPercent, ".", ",")+" % TTC", euros(*t.DepositTTC), false),
			entry("Reste à payer", euros(*t.RemainingDue), false),
		)
	}
	return rows
}

// conditionsRows: condiciones comerciales.
func conditionsRows(q entity.Quote) []core.Row {
	c := q.Conditions
	items := []string{}
	if c.ExecutionDelay != "" {
		items = append(items, "Délai d'exécution : "+c.ExecutionDelay)
	}
	if c.PaymentTerms != "" {
		items = append(items, "Conditions de paiement : "+c.PaymentTerms)
	}
	if len(c.PaymentMethods) > 0 {
		items = append(items, "Moyens de paiement : "+strings.Join(c.PaymentMethods, ", "))
	}
	if q.Comments != "" {
		items = append(items, q.Comments)
	}
	return section("CONDITIONS", items)
}

// mentionRows: menciones legales en el orden recibido.
func mentionRows(mentions []string) []core.Row {
	return section("MENTIONS LÉGALES", mentions)
}

func section(title string, items []string) []core.Row {
	if len(items) == 0 {
		return nil
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	for _, it := range items {
		rows = append(rows, text.NewAutoRow(it, props.Text{Size: 7, Color: colorGray, Top: 0.5, Bottom: 0.5}))
	}
	return rows
}

// footerRow: huella + QR (izq) y recuadro de firma (der). La vista previa no lleva huella.
func footerRow(doc *devis.QuoteDocument) core.Row {
	signature := col.New(6).Add(
		text.New("Bon pour accord", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2, Left: 3}),
		text.New("Date, signature et cachet du client, précédés de la mention « Bon pour accord »", props.Text{
			Size: 7, Top: 8, Left: 3, Color: colorGray,
		}),
	).WithStyle(&props.Cell{BorderType: border.Full, BorderColor: colorGray})

	if doc.Preview || doc.Fingerprint == "" {
		return row.New(36).Add(
			col.New(6).Add(text.New("APERÇU - document non numéroté", props.Text{
				Style: fontstyle.Bold, Size: 10, Color: colorGray, Top: 12,
			})),
			signature,
		)
	}

	left := []core.Component{
		text.New("Empreinte du document (SHA-384)", props.Text{Style: fontstyle.Bold, Size: 7, Top: 1, Left: 2}),
	}
	top := 5.0
	for _, chunk := range splitEvery(doc.Fingerprint, 48) {
		left = append(left, text.New(chunk, props.Text{Size: 6.5, Color: colorGray, Top: top, Left: 2}))
		top += 3.5
	}
	return row.New(36).Add(
		col.New(2).Add(code.NewQr(doc.Quote.Number+"|"+doc.Fingerprint, props.Rect{Percent: 95, Center: true})),
		col.New(4).Add(left...),
		signature,
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// Las fuentes base (cp1252) no tienen U+202F; se imprime como espacio no separable.
var coreFontSpaces = strings.NewReplacer("\u202f", "\u00a0")

func euros(v decimal.Decimal) string {
	return coreFontSpaces.Replace(totals.FormatCurrency(v))
}

func percent(v decimal.Decimal) string {
	return coreFontSpaces.Replace(totals.FormatPercentage(v))
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// splitEvery divide s en trozos de max n caracteres.
func splitEvery(s string, n int) []string {
	var parts []string
	for len(s) > n {
		parts = append(parts, s[:n])
		s = s[n:]
	}
	if s != "" {
		parts = append(parts, s)
	}
	return parts
}
