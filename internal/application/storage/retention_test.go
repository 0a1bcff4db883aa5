package storage_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/devis-api/internal/application/storage"
	"github.com/jhoicas/devis-api/internal/domain/entity"
)

func quotesAged(prefix string, n int, from time.Time, step time.Duration) []entity.Quote {
	out := make([]entity.Quote, n)
	for i := range out {
		out[i] = quote(fmt.Sprintf("%s%03d", prefix, i), from.Add(-time.Duration(i)*step))
	}
	return out
}

func TestRetentionSweep_ConservaLos50MasRecientes(t *testing.T) {
	recent := quotesAged("r", 10, fixedNow, time.Hour)
	old := quotesAged("o", 60, fixedNow.AddDate(-1, 0, 0), 24*time.Hour)

	kept := storage.RetentionSweep(append(old, recent...), fixedNow)

	assert.Len(t, kept, 50, "10 recientes + 40 antiguos")
	assert.Equal(t, "r000", kept[0].ID, "orden por modificación descendente")
	assert.Equal(t, "o039", kept[49].ID)
}

func TestRetentionSweep_ConservaTodosLosDeMenosDe6Meses(t *testing.T) {
	recent := quotesAged("r", 60, fixedNow, 24*time.Hour)
	old := quotesAged("o", 10, fixedNow.AddDate(0, -7, 0), time.Hour)

	kept := storage.RetentionSweep(append(recent, old...), fixedNow)

	assert.Len(t, kept, 60, "los de menos de 6 meses nunca se eliminan")
	for _, q := range kept {
		assert.Equal(t, byte('r'), q.ID[0], "solo sobreviven los recientes: %s", q.ID)
	}
}

func TestRetentionSweep_Idempotente(t *testing.T) {
	quotes := append(quotesAged("r", 30, fixedNow, 48*time.Hour), quotesAged("o", 40, fixedNow.AddDate(-2, 0, 0), time.Hour)...)

	once := storage.RetentionSweep(quotes, fixedNow)
	twice := storage.RetentionSweep(once, fixedNow)

	assert.Equal(t, once, twice)
}

func TestRetentionSweep_PocosNoCambia(t *testing.T) {
	quotes := quotesAged("o", 5, fixedNow.AddDate(-3, 0, 0), time.Hour)

	assert.Len(t, storage.RetentionSweep(quotes, fixedNow), 5)
	assert.Empty(t, storage.RetentionSweep(nil, fixedNow))
}
