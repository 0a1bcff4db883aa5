package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/devis-api/internal/application/auth"
	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/application/draft"
	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/infrastructure/kv"
	"github.com/jhoicas/devis-api/internal/infrastructure/metrics"
	"github.com/jhoicas/devis-api/internal/infrastructure/ubl"
	apphttp "github.com/jhoicas/devis-api/internal/interfaces/http"
	"github.com/jhoicas/devis-api/pkg/legal"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

type fakePDF struct{}

func (fakePDF) GenerateQuotePDF(_ context.Context, doc *devis.QuoteDocument) ([]byte, error) {
	return []byte("%PDF-1.7 " + doc.Quote.Number), nil
}

type testAPI struct {
	app     *fiber.App
	metrics *metrics.Metrics
}

// newTestAPI monta el router completo sobre un backend en memoria.
// ownerPassword vacío deja la API abierta.
func newTestAPI(t *testing.T, ownerPassword string) *testAPI {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	m := metrics.New("devis_test")
	store := storage.NewStore(kv.NewMemoryBackend(0), storage.Options{Clock: clock, Observer: m})
	autosaver := draft.NewAutosaver(store, time.Hour, nil)
	t.Cleanup(func() { _ = autosaver.Close(context.Background()) })

	validator := devis.NewValidator()
	deps := apphttp.RouterDeps{
		QuoteUC:        devis.NewQuoteUseCase(store, validator, autosaver, clock, nil, m),
		DraftUC:        devis.NewDraftUseCase(store, autosaver),
		SettingsUC:     devis.NewSettingsUseCase(store, validator, nil),
		PDFUC:          devis.NewPDFUseCase(store, fakePDF{}, clock, nil, m),
		UBLUC:          devis.NewUBLUseCase(store, ubl.NewQuotationBuilder(), nil, m),
		JWTSecret:      testJWTSecret,
		HTTPObserver:   m,
		MetricsHandler: m.Handler(),
		ServiceName:    "devis-api-test",
		Logger:         logger.Nop(),
	}
	if ownerPassword != "" {
		hash, err := auth.HashPassword(ownerPassword)
		require.NoError(t, err)
		deps.AuthUC = auth.NewAuthUseCase(hash, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	}

	app := fiber.New()
	apphttp.Router(app, deps)
	return &testAPI{app: app, metrics: m}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func quoteRequest() dto.QuoteRequest {
	return dto.QuoteRequest{
		Company: dto.CompanyRequest{
			Name:       "Atelier Dupont",
			Address:    "12 rue de la Paix",
			PostalCode: "75002",
			City:       "Paris",
			SIRET:      "73282932000074",
			LegalForm:  legal.LegalFormSARL,
		},
		Client: dto.ClientRequest{Name: "Élodie Martin"},
		LineItems: []dto.LineItemRequest{
			{Designation: "Développement site vitrine", Quantity: decimal.NewFromInt(2), Unit: legal.UnitFlatFee, UnitPriceHT: decimal.RequireFromString("450.50"), VATRate: decimal.NewFromInt(20)},
		},
		Subject: "Site vitrine",
	}
}

func createQuote(t *testing.T, a *testAPI) dto.QuoteResponse {
	t.Helper()
	resp, body := a.do(t, http.MethodPost, "/api/quotes", quoteRequest())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "crear presupuesto: %s", body)
	var out dto.QuoteResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), "cuerpo de error: %s", body)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Salud y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	resp, body := newTestAPI(t, "").do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"devis-api-test"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID), "con logger configurado cada respuesta lleva X-Request-ID")
}

func TestMetrics_ExponePeticionesPorRuta(t *testing.T) {
	a := newTestAPI(t, "")
	createQuote(t, a)

	resp, body := a.do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `devis_test_http_requests_total{method="POST",route="/api/quotes`)
	assert.Contains(t, string(body), `devis_test_quotes_saved_total{action="create"} 1`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Quotes
// ──────────────────────────────────────────────────────────────────────────────

func TestQuotes_CrearYObtener(t *testing.T) {
	a := newTestAPI(t, "")
	created := createQuote(t, a)

	assert.Equal(t, "DEVIS-2025-0001", created.Number)
	assert.Equal(t, entity.QuoteStatusDraft, created.EffectiveStatus)
	assert.Equal(t, "1081.20", created.Totals.TotalTTC.StringFixed(2), "901.00 HT + 180.20 IVA")

	resp, body := a.do(t, http.MethodGet, "/api/quotes/"+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got dto.QuoteResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Len(t, got.Breakdown, 1, "un único tipo de IVA")
}

func TestQuotes_ValidacionDevuelveCampos(t *testing.T) {
	req := quoteRequest()
	req.Company.SIRET = "123"
	req.LineItems = nil

	resp, body := newTestAPI(t, "").do(t, http.MethodPost, "/api/quotes", req)

	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	out := decodeError(t, body)
	assert.Equal(t, apphttp.CodeValidation, out.Code)
	fields := make([]string, 0, len(out.Fields))
	for _, f := range out.Fields {
		fields = append(fields, f.Field)
	}
	assert.Contains(t, fields, "company.siret")
	assert.Contains(t, fields, "line_items")
}

func TestQuotes_CuerpoInvalido(t *testing.T) {
	resp, body := newTestAPI(t, "").do(t, http.MethodPost, "/api/quotes", "{no-json")

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apphttp.CodeInvalidBody, decodeError(t, body).Code)
}

func TestQuotes_NoEncontrado(t *testing.T) {
	resp, body := newTestAPI(t, "").do(t, http.MethodGet, "/api/quotes/no-existe", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apphttp.CodeNotFound, decodeError(t, body).Code)
}

func TestQuotes_TransicionDeEstado(t *testing.T) {
	a := newTestAPI(t, "")
	q := createQuote(t, a)
	path := "/api/quotes/" + q.ID + "/status"

	resp, body := a.do(t, http.MethodPatch, path, dto.StatusRequest{Status: entity.QuoteStatusAccepted})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "un borrador no puede aceptarse directamente")
	assert.Equal(t, apphttp.CodeInvalidTransition, decodeError(t, body).Code)

	resp, _ = a.do(t, http.MethodPatch, path, dto.StatusRequest{Status: entity.QuoteStatusSent})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, body = a.do(t, http.MethodPatch, path, dto.StatusRequest{Status: entity.QuoteStatusAccepted})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.QuoteResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, entity.QuoteStatusAccepted, out.Status)

	resp, _ = a.do(t, http.MethodPut, "/api/quotes/"+q.ID, quoteRequest())
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, "un presupuesto aceptado no se modifica")
}

func TestQuotes_ListarYEstadisticas(t *testing.T) {
	a := newTestAPI(t, "")
	createQuote(t, a)
	other := quoteRequest()
	other.Client.Name = "Boulangerie Lefèvre"
	resp, _ := a.do(t, http.MethodPost, "/api/quotes", other)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := a.do(t, http.MethodGet, "/api/quotes?q=lefevre", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []dto.QuoteResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1, "la búsqueda ignora acentos y mayúsculas")
	assert.Equal(t, "Boulangerie Lefèvre", list[0].Client.Name)

	resp, body = a.do(t, http.MethodGet, "/api/quotes?status=Inconnu", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "estado de filtro desconocido")
	assert.Equal(t, apphttp.CodeValidation, decodeError(t, body).Code)

	resp, body = a.do(t, http.MethodGet, "/api/quotes/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var stats dto.QuoteStatsResponse
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Drafts)
}

func TestQuotes_EliminarYDuplicar(t *testing.T) {
	a := newTestAPI(t, "")
	q := createQuote(t, a)

	resp, body := a.do(t, http.MethodPost, "/api/quotes/"+q.ID+"/duplicate", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var d entity.QuoteDraft
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, "Élodie Martin", d.Client.Name)

	resp, body = a.do(t, http.MethodGet, "/api/draft", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "el duplicado queda como borrador: %s", body)

	resp, _ = a.do(t, http.MethodDelete, "/api/quotes/"+q.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = a.do(t, http.MethodDelete, "/api/quotes/"+q.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestQuotes_DocumentosDescargables(t *testing.T) {
	a := newTestAPI(t, "")
	q := createQuote(t, a)

	resp, body := a.do(t, http.MethodGet, "/api/quotes/"+q.ID+"/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "devis_DEVIS-2025-0001.pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	resp, body = a.do(t, http.MethodGet, "/api/quotes/"+q.ID+"/ubl", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "devis_DEVIS-2025-0001.xml")
	assert.Contains(t, string(body), "<cbc:ID>DEVIS-2025-0001</cbc:ID>")

	resp, _ = a.do(t, http.MethodGet, "/api/quotes/no-existe/pdf", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTotals_VistaPrevia(t *testing.T) {
	req := dto.TotalsRequest{
		LineItems:      quoteRequest().LineItems,
		DepositPercent: decimal.NewFromInt(30),
	}

	resp, body := newTestAPI(t, "").do(t, http.MethodPost, "/api/totals", req)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.TotalsResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "1081.20", out.Totals.TotalTTC.StringFixed(2))
	require.True(t, out.Totals.HasDeposit())
	assert.Equal(t, "324.36", out.Totals.DepositTTC.StringFixed(2))
	assert.Equal(t, "1\u202f081,20\u00a0€", out.Formatted["total_ttc"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrador
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_EditarGuardarYDescartar(t *testing.T) {
	a := newTestAPI(t, "")

	resp, _ := a.do(t, http.MethodGet, "/api/draft", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "sin borrador")

	d := entity.QuoteDraft{Subject: "Rénovation cuisine", Client: entity.Client{Name: "Zoé"}}
	resp, _ = a.do(t, http.MethodPut, "/api/draft", d)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	resp, body := a.do(t, http.MethodGet, "/api/draft", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "GET vuelca la edición pendiente")
	var got entity.QuoteDraft
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Rénovation cuisine", got.Subject)

	resp, body = a.do(t, http.MethodPost, "/api/draft/pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "vista previa del borrador guardado")
	assert.Contains(t, string(body), devis.PreviewNumber)

	resp, _ = a.do(t, http.MethodDelete, "/api/draft", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = a.do(t, http.MethodGet, "/api/draft", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

func TestSettings_EmpresaPorDefecto(t *testing.T) {
	a := newTestAPI(t, "")

	resp, _ := a.do(t, http.MethodGet, "/api/settings/company", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := a.do(t, http.MethodPut, "/api/settings/company", quoteRequest().Company)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, "guardar empresa: %s", body)

	resp, body = a.do(t, http.MethodGet, "/api/settings/company", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var c entity.Company
	require.NoError(t, json.Unmarshal(body, &c))
	assert.Equal(t, "FR44732829320", c.VATNumber, "número de IVA derivado del SIREN")
}

func TestSettings_MencionesLegales(t *testing.T) {
	a := newTestAPI(t, "")

	resp, body := a.do(t, http.MethodPut, "/api/settings/legal-notices", dto.LegalNoticesRequest{Notices: []string{"  Assurance RC Pro AXA ", ""}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"notices":["Assurance RC Pro AXA"]}`, string(body))
}

func TestStorage_ExportarEImportar(t *testing.T) {
	a := newTestAPI(t, "")
	createQuote(t, a)

	resp, snapshot := a.do(t, http.MethodGet, "/api/storage/export", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")

	resp, body := a.do(t, http.MethodPost, "/api/storage/import", `{"draft":null}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "sin la clave quotes")
	assert.Equal(t, apphttp.CodeInvalidSnapshot, decodeError(t, body).Code)

	resp, _ = a.do(t, http.MethodPost, "/api/storage/import", string(snapshot))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, body = a.do(t, http.MethodGet, "/api/storage/usage", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var u storage.Usage
	require.NoError(t, json.Unmarshal(body, &u))
	assert.Positive(t, u.UsedBytes)

	resp, body = a.do(t, http.MethodPost, "/api/storage/sweep", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"evicted":0}`, string(body), "un presupuesto reciente no se elimina")
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth habilitada
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_RutasProtegidas(t *testing.T) {
	a := newTestAPI(t, "s3cret-titular")

	resp, _ := a.do(t, http.MethodGet, "/api/quotes", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "sin token")

	resp, body := a.do(t, http.MethodPost, "/api/auth/token", dto.LoginRequest{Password: "incorrecta"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apphttp.CodeUnauthorized, decodeError(t, body).Code)

	resp, body = a.do(t, http.MethodPost, "/api/auth/token", dto.LoginRequest{Password: "s3cret-titular"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var tok dto.TokenResponse
	require.NoError(t, json.Unmarshal(body, &tok))
	assert.Equal(t, "Bearer", tok.TokenType)

	resp, _ = a.do(t, http.MethodGet, "/api/quotes", nil, "Authorization", "Bearer "+tok.AccessToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "health es público")
}

func TestAuth_SinTitularNoHayEndpointDeToken(t *testing.T) {
	resp, _ := newTestAPI(t, "").do(t, http.MethodPost, "/api/auth/token", dto.LoginRequest{Password: "x"})

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
