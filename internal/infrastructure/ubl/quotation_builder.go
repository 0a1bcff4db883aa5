// Package ubl exporta el presupuesto como documento UBL 2.1 Quotation en forma canónica.
package ubl

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/domain/totals"
	"github.com/jhoicas/devis-api/pkg/legal"
)

// Namespaces UBL 2.1.
const (
	NsQuotation = "urn:oasis:names:specification:ubl:schema:xsd:Quotation-2"
	NsCac       = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc       = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

const (
	currency = "EUR"
	country  = "FR"
	// ISO 6523: 0002 SIRENE (SIRET/SIREN).
	schemeSIRET = "0002"
	// Categoría UNCL5305 para la franquicia en base.
	categoryExempt = "E"
)

// QuotationBuilder implementa devis.QuoteXMLBuilder.
type QuotationBuilder struct{}

func NewQuotationBuilder() *QuotationBuilder { return &QuotationBuilder{} }

var _ devis.QuoteXMLBuilder = (*QuotationBuilder)(nil)

// BuildQuotation genera el XML del presupuesto y lo devuelve canonicalizado (C14N).
func (b *QuotationBuilder) BuildQuotation(doc *devis.QuoteDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("ubl: documento vacío")
	}
	q := doc.Quote
	exempt := q.Company.IsMicroEnterprise()

	x := etree.NewDocument()
	root := x.CreateElement("Quotation")
	root.CreateAttr("xmlns", NsQuotation)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	// ---- cbc: cabecera
	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "ID", q.Number)
	if q.ID != "" {
		cbc(root, "UUID", q.ID)
	}
	cbc(root, "IssueDate", q.IssueDate.Format("2006-01-02"))
	cbc(root, "IssueTime", q.IssueDate.Format("15:04:05Z07:00"))
	if q.Subject != "" {
		cbc(root, "Note", q.Subject)
	}
	for _, m := range doc.Mentions {
		cbc(root, "Note", m)
	}
	cbc(root, "PricingCurrencyCode", currency)
	cbc(root, "LineCountNumeric", strconv.Itoa(len(q.LineItems)))

	vp := root.CreateElement("cac:ValidityPeriod")
	cbc(vp, "EndDate", q.ValidityDate.Format("2006-01-02"))

	// ---- huella del documento
	if doc.Fingerprint != "" {
		ref := root.CreateElement("cac:AdditionalDocumentReference")
		cbc(ref, "ID", doc.Fingerprint)
		cbc(ref, "DocumentType", "SHA-384")
	}

	// ---- partes
	writeParty(root.CreateElement("cac:SellerSupplierParty"), party{
		name: q.Company.Name, address: q.Company.Address, postalCode: q.Company.PostalCode,
		city: q.Company.City, phone: q.Company.Phone, email: q.Company.Email,
		siret: q.Company.SIRET, vatNumber: q.Company.VATNumber,
	})
	writeParty(root.CreateElement("cac:BuyerCustomerParty"), party{
		name: q.Client.Name, address: q.Client.Address, postalCode: q.Client.PostalCode,
		city: q.Client.City, phone: q.Client.Phone, email: q.Client.Email, siret: q.Client.SIRET,
	})

	// ---- medios de pago
	for _, method := range q.Conditions.PaymentMethods {
		code, ok := legal.PaymentMeansCodes[method]
		if !ok {
			code = "ZZZ"
		}
		pm := root.CreateElement("cac:PaymentMeans")
		cbc(pm, "PaymentMeansCode", code).CreateAttr("name", method)
	}

	// ---- impuestos
	tt := root.CreateElement("cac:TaxTotal")
	amount(tt, "TaxAmount", q.Totals.TotalVAT)
	for _, e := range doc.Breakdown {
		st := tt.CreateElement("cac:TaxSubtotal")
		amount(st, "TaxableAmount", e.BaseHT)
		amount(st, "TaxAmount", e.VATAmount)
		taxCategory(st.CreateElement("cac:TaxCategory"), e.Rate, exempt)
	}

	// ---- totales
	mt := root.CreateElement("cac:QuotedMonetaryTotal")
	amount(mt, "LineExtensionAmount", q.Totals.TotalHT)
	amount(mt, "TaxExclusiveAmount", q.Totals.TotalHT)
	amount(mt, "TaxInclusiveAmount", q.Totals.TotalTTC)
	amount(mt, "PayableAmount", q.Totals.TotalTTC)

	// ---- líneas
	for i, it := range q.LineItems {
		writeLine(root.CreateElement("cac:QuotationLine"), i+1, it, exempt)
	}

	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("ubl: serializar: %w", err)
	}
	out, err := Canonicalize(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("ubl: canonicalizar: %w", err)
	}
	return out, nil
}

// Canonicalize aplica Canonical XML 1.0 al documento.
func Canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

type party struct {
	name, address, postalCode, city string
	phone, email                    string
	siret, vatNumber                string
}

func writeParty(parent *etree.Element, p party) {
	el := parent.CreateElement("cac:Party")
	cbc(el.CreateElement("cac:PartyName"), "Name", p.name)

	addr := el.CreateElement("cac:PostalAddress")
	if p.address != "" {
		cbc(addr, "StreetName", p.address)
	}
	if p.city != "" {
		cbc(addr, "CityName", p.city)
	}
	if p.postalCode != "" {
		cbc(addr, "PostalZone", p.postalCode)
	}
	cbc(addr.CreateElement("cac:Country"), "IdentificationCode", country)

	if p.vatNumber != "" {
		ts := el.CreateElement("cac:PartyTaxScheme")
		cbc(ts, "CompanyID", p.vatNumber)
		cbc(ts.CreateElement("cac:TaxScheme"), "ID", "VAT")
	}

	le := el.CreateElement("cac:PartyLegalEntity")
	cbc(le, "RegistrationName", p.name)
	if p.siret != "" {
		cbc(le, "CompanyID", legalDigits(p.siret)).CreateAttr("schemeID", schemeSIRET)
	}

	if p.phone != "" || p.email != "" {
		c := el.CreateElement("cac:Contact")
		if p.phone != "" {
			cbc(c, "Telephone", p.phone)
		}
		if p.email != "" {
			cbc(c, "ElectronicMail", p.email)
		}
	}
}

func writeLine(parent *etree.Element, n int, it entity.LineItem, exempt bool) {
	li := parent.CreateElement("cac:LineItem")
	cbc(li, "ID", strconv.Itoa(n))
	unit, ok := legal.UNECEUnitCodes[it.Unit]
	if !ok {
		unit = "C62"
	}
	cbc(li, "Quantity", it.Quantity.String()).CreateAttr("unitCode", unit)
	amount(li, "LineExtensionAmount", it.TotalHT)
	amount(li, "TotalTaxAmount", totals.LineVAT(it.TotalHT, it.VATRate))

	price := li.CreateElement("cac:Price")
	amount(price, "PriceAmount", it.UnitPriceHT)

	item := li.CreateElement("cac:Item")
	cbc(item, "Name", it.Designation)
	taxCategory(item.CreateElement("cac:ClassifiedTaxCategory"), it.VATRate, exempt)
}

func taxCategory(el *etree.Element, rate decimal.Decimal, exempt bool) {
	code := legal.VATCategoryCode(rate)
	if exempt {
		code = categoryExempt
	}
	cbc(el, "ID", code)
	cbc(el, "Percent", rate.String())
	if exempt {
		cbc(el, "TaxExemptionReason", legal.MentionVATExemption)
	}
	cbc(el.CreateElement("cac:TaxScheme"), "ID", "VAT")
}

// ── helpers ───────────────────────────────────────────────────────────────────

func cbc(parent *etree.Element, name, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + name)
	el.SetText(value)
	return el
}

func amount(parent *etree.Element, name string, v decimal.Decimal) {
	cbc(parent, name, v.StringFixed(2)).CreateAttr("currencyID", currency)
}

func legalDigits(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
