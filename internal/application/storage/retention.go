package storage

import (
	"time"

	"github.com/jhoicas/devis-api/internal/domain/entity"
)

const (
	// RetentionKeepRecent número de presupuestos más recientes que siempre se conservan.
	RetentionKeepRecent = 50
	// RetentionMonths antigüedad por debajo de la cual un presupuesto siempre se conserva.
	RetentionMonths = 6
)

// RetentionSweep conserva los RetentionKeepRecent más recientes más todos los modificados
// en los últimos RetentionMonths meses, en orden de modificación descendente. Idempotente.
func RetentionSweep(quotes []entity.Quote, now time.Time) []entity.Quote {
	cutoff := now.AddDate(0, -RetentionMonths, 0)
	sorted := sortByRecency(quotes)
	kept := make([]entity.Quote, 0, len(sorted))
	for i, q := range sorted {
		if i < RetentionKeepRecent || q.ModifiedAt.After(cutoff) {
			kept = append(kept, q)
		}
	}
	return kept
}
