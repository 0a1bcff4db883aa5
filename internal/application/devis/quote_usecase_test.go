package devis_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/devis-api/internal/application/devis"
	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
	"github.com/jhoicas/devis-api/internal/infrastructure/kv"
	"github.com/jhoicas/devis-api/pkg/legal"
)

var fixedNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

// fakeScheduler registra las llamadas al autoguardado.
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []entity.QuoteDraft
	cancels   int
	flushes   int
}

func (f *fakeScheduler) Schedule(d entity.QuoteDraft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, d)
}

func (f *fakeScheduler) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeScheduler) Flush(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

type countingObserver struct {
	saved    map[string]int
	rendered map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{saved: map[string]int{}, rendered: map[string]int{}}
}

func (o *countingObserver) QuoteSaved(action string)     { o.saved[action]++ }
func (o *countingObserver) DocumentRendered(kind string) { o.rendered[kind]++ }

type fixture struct {
	store *storage.Store
	sched *fakeScheduler
	obs   *countingObserver
	now   time.Time
	uc    *devis.QuoteUseCase
}

func newFixture() *fixture {
	f := &fixture{sched: &fakeScheduler{}, obs: newCountingObserver(), now: fixedNow}
	clock := func() time.Time { return f.now }
	f.store = storage.NewStore(kv.NewMemoryBackend(0), storage.Options{Clock: clock})
	f.uc = devis.NewQuoteUseCase(f.store, devis.NewValidator(), f.sched, clock, nil, f.obs)
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validRequest() dto.QuoteRequest {
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
			{Designation: "Développement site vitrine", Quantity: dec("1"), Unit: legal.UnitFlatFee, UnitPriceHT: dec("99.99"), VATRate: dec("20")},
		},
		Subject: "Site vitrine",
	}
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreate_AsignaNumeroYTotales(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.SaveDraft(ctx, entity.QuoteDraft{Subject: "en curso"}))

	req := validRequest()
	req.Conditions.DepositPercent = dec("30")
	resp, err := f.uc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "DEVIS-2025-0001", resp.Number)
	assert.Equal(t, entity.QuoteStatusDraft, resp.Status)
	assert.Equal(t, 1, resp.Version)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, fixedNow.AddDate(0, 0, 30), resp.ValidityDate, "validez por defecto 30 días")
	assert.Equal(t, "119.99", resp.Totals.TotalTTC.StringFixed(2))
	require.True(t, resp.Totals.HasDeposit())
	assert.Equal(t, "36.00", resp.Totals.DepositTTC.StringFixed(2))
	assert.NotEmpty(t, resp.LineItems[0].ID, "cada línea recibe un ID")
	assert.Equal(t, "99.99", resp.LineItems[0].TotalHT.StringFixed(2))

	assert.Equal(t, 1, f.sched.cancels, "se cancela el autoguardado pendiente")
	draft, err := f.store.GetDraft(ctx)
	require.NoError(t, err)
	assert.Nil(t, draft, "guardar borra el borrador")
	assert.Equal(t, 1, f.obs.saved["create"])
}

func TestCreate_ValidacionNoConsumeNumero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := validRequest()
	req.Client.Name = ""
	req.LineItems = nil
	_, err := f.uc.Create(ctx, req)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "client.name")
	assert.Contains(t, fields, "line_items")

	resp, err := f.uc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "DEVIS-2025-0001", resp.Number, "un intento inválido no avanza el contador")
}

func TestCreate_ReglasDeLinea(t *testing.T) {
	cases := map[string]func(*dto.QuoteRequest){
		"precio cero":        func(r *dto.QuoteRequest) { r.LineItems[0].UnitPriceHT = dec("0") },
		"precio excesivo":    func(r *dto.QuoteRequest) { r.LineItems[0].UnitPriceHT = dec("1000000") },
		"cantidad cero":      func(r *dto.QuoteRequest) { r.LineItems[0].Quantity = dec("0") },
		"unidad desconocida": func(r *dto.QuoteRequest) { r.LineItems[0].Unit = "Mètre" },
		"tipo de IVA 7 %":    func(r *dto.QuoteRequest) { r.LineItems[0].VATRate = dec("7") },
		"SIRET inválido":     func(r *dto.QuoteRequest) { r.Company.SIRET = "73282932000075" },
		"código postal":      func(r *dto.QuoteRequest) { r.Company.PostalCode = "7500" },
		"validez > 365":      func(r *dto.QuoteRequest) { r.Conditions.ValidityDays = 400 },
		"anticipo > 100":     func(r *dto.QuoteRequest) { r.Conditions.DepositPercent = dec("120") },
		"51 líneas": func(r *dto.QuoteRequest) {
			for len(r.LineItems) <= dto.MaxLineItems {
				r.LineItems = append(r.LineItems, r.LineItems[0])
			}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			mutate(&req)
			_, err := f.uc.Create(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreate_AplicaMencionesGlobales(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.SaveCustomLegalNotices(ctx, []string{"Devis gratuit."}))

	resp, err := f.uc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"Devis gratuit."}, resp.Conditions.CustomNotices)
	assert.Equal(t, "2 semaines", resp.Conditions.ExecutionDelay, "condiciones por defecto")
}

// ── Update ────────────────────────────────────────────────────────────────────

func TestUpdate_ConservaNumeroEIncrementaVersion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, validRequest())
	require.NoError(t, err)

	f.now = fixedNow.Add(2 * time.Hour)
	req := validRequest()
	req.LineItems[0].Quantity = dec("2")
	req.Conditions.ValidityDays = 15
	updated, err := f.uc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, created.Number, updated.Number)
	assert.Equal(t, created.IssueDate, updated.IssueDate)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, f.now, updated.ModifiedAt)
	assert.Equal(t, fixedNow.AddDate(0, 0, 15), updated.ValidityDate, "validez desde la emisión")
	assert.Equal(t, "199.98", updated.Totals.TotalHT.StringFixed(2))
}

func TestUpdate_PresupuestoCerrado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, _ := f.uc.Create(ctx, validRequest())
	_, err := f.uc.ChangeStatus(ctx, created.ID, entity.QuoteStatusSent)
	require.NoError(t, err)
	_, err = f.uc.ChangeStatus(ctx, created.ID, entity.QuoteStatusAccepted)
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, created.ID, validRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestUpdate_NoEncontrado(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Update(context.Background(), "nope", validRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Estados ───────────────────────────────────────────────────────────────────

func TestChangeStatus_Transiciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	q, _ := f.uc.Create(ctx, validRequest())

	_, err := f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Brouillon → Accepté no permitido")

	_, err = f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusExpired)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Expiré nunca se asigna")

	_, err = f.uc.ChangeStatus(ctx, q.ID, "Archivé")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusSent)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusSent, resp.Status)

	resp, err = f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusRejected, resp.EffectiveStatus)

	_, err = f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusSent)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Refusé es final")
}

func TestChangeStatus_ExpiradoNoSePuedeAceptar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	q, _ := f.uc.Create(ctx, validRequest())
	_, err := f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusSent)
	require.NoError(t, err)

	f.now = fixedNow.AddDate(0, 0, 31)
	got, err := f.uc.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteStatusSent, got.Status, "el estado almacenado no cambia")
	assert.Equal(t, entity.QuoteStatusExpired, got.EffectiveStatus)

	_, err = f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusAccepted)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusRejected)
	assert.NoError(t, err, "un expirado aún puede rechazarse")
}

// ── Delete / Duplicate ────────────────────────────────────────────────────────

func TestDelete_NumeroNoSeReutiliza(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	q, _ := f.uc.Create(ctx, validRequest())

	require.NoError(t, f.uc.Delete(ctx, q.ID))
	_, err := f.uc.Get(ctx, q.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, q.ID), domain.ErrNotFound)

	next, err := f.uc.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "DEVIS-2025-0002", next.Number)
}

func TestDuplicate_CopiaEnBorrador(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	q, _ := f.uc.Create(ctx, validRequest())

	d, err := f.uc.Duplicate(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Client.Name, d.Client.Name)
	require.Len(t, d.LineItems, 1)
	assert.NotEqual(t, q.LineItems[0].ID, d.LineItems[0].ID, "líneas con IDs nuevos")

	saved, err := f.store.GetDraft(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Site vitrine", saved.Subject)

	list, _ := f.store.ListQuotes(ctx)
	assert.Len(t, list, 1, "duplicar no crea un presupuesto")
}

// ── Vista previa de totales ───────────────────────────────────────────────────

func TestComputeTotals_VistaPrevia(t *testing.T) {
	f := newFixture()

	resp := f.uc.ComputeTotals(dto.TotalsRequest{
		LineItems: []dto.LineItemRequest{
			{Quantity: dec("1"), UnitPriceHT: dec("100"), VATRate: dec("20")},
			{Quantity: dec("1"), UnitPriceHT: dec("10"), VATRate: dec("5.5")},
		},
		DepositPercent: dec("50"),
	})

	assert.Equal(t, "130.55", resp.Totals.TotalTTC.StringFixed(2))
	require.Len(t, resp.Breakdown, 2)
	assert.Equal(t, "5,5\u202f%", resp.Breakdown[0].RateLabel)
	assert.Equal(t, "130,55\u00a0€", resp.Formatted["total_ttc"])
	assert.Contains(t, resp.Formatted, "remaining_due")
}
