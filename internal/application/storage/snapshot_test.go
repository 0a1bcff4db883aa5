package storage_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/entity"
)

func TestExportImport_IdaYVuelta(t *testing.T) {
	ctx := context.Background()
	src := newStore(newScripted())
	require.NoError(t, src.UpsertQuote(ctx, quote("a", fixedNow)))
	require.NoError(t, src.SaveDefaultCompany(ctx, entity.Company{Name: "Atelier Dupont"}))
	require.NoError(t, src.SaveDraft(ctx, entity.QuoteDraft{Subject: "Logo"}))
	_, err := src.NextQuoteNumber(ctx)
	require.NoError(t, err)

	exported, err := src.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(exported), "\n  \"quotes\"", "JSON indentado")

	dst := newStore(newScripted())
	require.NoError(t, dst.ImportSnapshot(ctx, exported))

	again, err := dst.ExportSnapshot(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(exported), string(again), "importar lo exportado reproduce el documento")
}

func TestImportSnapshot_Invalido(t *testing.T) {
	cases := map[string]string{
		"no es JSON":         "{",
		"sin quotes":         `{"last_sequence_number": 3}`,
		"quotes no es array": `{"quotes": {"a": 1}}`,
		"quotes nulo":        `{"quotes": null}`,
		"quote mal formado":  `{"quotes": [{"totals": {"total_ht": "abc"}}]}`,
		"secuencia negativa": `{"quotes": [], "last_sequence_number": -1}`,
		"company mal tipado": `{"quotes": [], "default_company": "Atelier"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(newScripted())
			require.NoError(t, s.UpsertQuote(ctx, quote("keep", fixedNow)))
			before, _ := s.ExportSnapshot(ctx)

			err := s.ImportSnapshot(ctx, []byte(payload))

			assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
			after, _ := s.ExportSnapshot(ctx)
			assert.JSONEq(t, string(before), string(after), "los datos no se modifican")
		})
	}
}

func TestImportSnapshot_FusionaSoloClavesPresentes(t *testing.T) {
	ctx := context.Background()
	s := newStore(newScripted())
	require.NoError(t, s.SaveDefaultCompany(ctx, entity.Company{Name: "Atelier Dupont"}))
	require.NoError(t, s.SaveCustomLegalNotices(ctx, []string{"Ancienne mention"}))

	payload, _ := json.Marshal(map[string]any{
		"quotes":               []entity.Quote{quote("imp", fixedNow)},
		"custom_legal_notices": []string{"Nouvelle mention"},
		"last_sequence_number": 42,
	})
	require.NoError(t, s.ImportSnapshot(ctx, payload))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Quotes, 1)
	assert.Equal(t, "imp", doc.Quotes[0].ID)
	assert.Equal(t, []string{"Nouvelle mention"}, doc.CustomLegalNotices)
	assert.Equal(t, 42, doc.LastSequenceNumber)
	require.NotNil(t, doc.DefaultCompany, "claves ausentes conservan su valor")
	assert.Equal(t, "Atelier Dupont", doc.DefaultCompany.Name)

	n, _ := s.NextQuoteNumber(ctx)
	assert.Equal(t, "DEVIS-2025-0043", n)
}

func TestImportSnapshot_ContadorNoRetrocede(t *testing.T) {
	ctx := context.Background()
	s := newStore(newScripted())
	for i := 0; i < 5; i++ {
		_, err := s.NextQuoteNumber(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, s.ImportSnapshot(ctx, []byte(`{"quotes": [], "last_sequence_number": 0}`)))

	doc, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.LastSequenceNumber, "un snapshot con contador menor no lo decrementa")

	n, err := s.NextQuoteNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "DEVIS-2025-0006", n, "los números ya emitidos no se reutilizan")
}

func TestImportSnapshot_DraftNuloLoBorra(t *testing.T) {
	ctx := context.Background()
	s := newStore(newScripted())
	require.NoError(t, s.SaveDraft(ctx, entity.QuoteDraft{Subject: "Logo"}))

	require.NoError(t, s.ImportSnapshot(ctx, []byte(`{"quotes": [], "draft": null}`)))

	d, _ := s.GetDraft(ctx)
	assert.Nil(t, d)
}

// ── Uso ───────────────────────────────────────────────────────────────────────

func TestStorageUsage(t *testing.T) {
	ctx := context.Background()
	b := newScripted()
	s := newStore(b)

	u, err := s.StorageUsage(ctx)
	require.NoError(t, err)
	assert.Zero(t, u.UsedBytes, "sin documento no hay uso")
	assert.Equal(t, storage.DefaultCapacityBytes, u.CapacityBytes)

	require.NoError(t, s.UpsertQuote(ctx, quote("a", fixedNow)))
	raw, _, _ := b.MemoryBackend.Get(ctx, storage.DefaultKey)
	u, err = s.StorageUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(raw), u.UsedBytes, "bytes UTF-8 del valor almacenado")
	assert.False(t, u.NearCapacity)
}

func TestStorageUsage_AvisoAl80PorCiento(t *testing.T) {
	ctx := context.Background()
	b := newScripted()
	require.NoError(t, b.MemoryBackend.Set(ctx, storage.DefaultKey, string(make([]byte, 80))))
	s := storage.NewStore(b, storage.Options{Clock: fixedClock, CapacityBytes: 100})

	u, err := s.StorageUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 80, u.Percentage)
	assert.True(t, u.NearCapacity, "80 % activa el aviso")
}
