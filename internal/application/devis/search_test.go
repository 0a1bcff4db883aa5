package devis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/devis-api/internal/application/dto"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
)

func seedQuotes(t *testing.T, f *fixture) []dto.QuoteResponse {
	t.Helper()
	ctx := context.Background()
	out := make([]dto.QuoteResponse, 0, 3)
	for _, c := range []struct{ client, price string }{
		{"Élodie Martin", "100"},
		{"Boulangerie Lefèvre", "2500"},
		{"Zoé Durand", "40"},
	} {
		req := validRequest()
		req.Client.Name = c.client
		req.LineItems[0].UnitPriceHT = dec(c.price)
		q, err := f.uc.Create(ctx, req)
		require.NoError(t, err)
		out = append(out, *q)
	}
	return out
}

func numbers(list []dto.QuoteResponse) []string {
	out := make([]string, len(list))
	for i, q := range list {
		out[i] = q.Number
	}
	return out
}

func TestList_BusquedaSinAcentos(t *testing.T) {
	f := newFixture()
	seedQuotes(t, f)

	got, err := f.uc.List(context.Background(), dto.QuoteListFilter{Query: "elodie"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEVIS-2025-0001"}, numbers(got))

	got, _ = f.uc.List(context.Background(), dto.QuoteListFilter{Query: "LEFEVRE"})
	assert.Equal(t, []string{"DEVIS-2025-0002"}, numbers(got), "sin distinguir mayúsculas")

	got, _ = f.uc.List(context.Background(), dto.QuoteListFilter{Query: "devis-2025-0003"})
	assert.Equal(t, []string{"DEVIS-2025-0003"}, numbers(got), "también por número")
}

func TestList_FiltroPorEstadoEfectivo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	qs := seedQuotes(t, f)
	_, err := f.uc.ChangeStatus(ctx, qs[0].ID, entity.QuoteStatusSent)
	require.NoError(t, err)
	_, err = f.uc.ChangeStatus(ctx, qs[1].ID, entity.QuoteStatusSent)
	require.NoError(t, err)

	f.now = fixedNow.AddDate(0, 1, 0)
	expired, err := f.uc.List(ctx, dto.QuoteListFilter{Status: entity.QuoteStatusExpired})
	require.NoError(t, err)
	assert.Len(t, expired, 2)

	sent, _ := f.uc.List(ctx, dto.QuoteListFilter{Status: entity.QuoteStatusSent})
	assert.Empty(t, sent, "los enviados vencidos se listan como Expiré")
}

func TestList_FiltroImporteYOrden(t *testing.T) {
	f := newFixture()
	seedQuotes(t, f)

	got, err := f.uc.List(context.Background(), dto.QuoteListFilter{MinAmount: "100", SortBy: "amount", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DEVIS-2025-0001", "DEVIS-2025-0002"}, numbers(got), "TTC ≥ 100, ascendente")

	got, _ = f.uc.List(context.Background(), dto.QuoteListFilter{SortBy: "client", SortOrder: "asc"})
	assert.Equal(t, []string{"DEVIS-2025-0002", "DEVIS-2025-0001", "DEVIS-2025-0003"}, numbers(got), "É se ordena como E")
}

func TestList_FiltroInvalido(t *testing.T) {
	f := newFixture()
	_, err := f.uc.List(context.Background(), dto.QuoteListFilter{From: "15/03/2025", SortBy: "color"})

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	qs := seedQuotes(t, f)
	for _, q := range qs[:2] {
		_, err := f.uc.ChangeStatus(ctx, q.ID, entity.QuoteStatusSent)
		require.NoError(t, err)
	}
	_, err := f.uc.ChangeStatus(ctx, qs[0].ID, entity.QuoteStatusAccepted)
	require.NoError(t, err)

	st, err := f.uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Drafts)
	assert.Equal(t, 1, st.Sent)
	assert.Equal(t, 1, st.Accepted)
	assert.Equal(t, "120.00", st.Revenue.StringFixed(2), "solo los aceptados")
	assert.Equal(t, 100, st.AcceptanceRate, "1 aceptado de 1 decidido")
}
