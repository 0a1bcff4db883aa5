// Package sqlite implementa el backend clave/valor sobre un archivo SQLite (gorm).
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/repository"
)

// Entry fila de la tabla kv_entries.
type Entry struct {
	Key       string `gorm:"primaryKey;size:200"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// KVBackend persiste cada clave en una fila. capacity <= 0 desactiva el límite.
type KVBackend struct {
	db       *gorm.DB
	capacity int
}

var _ repository.KVBackend = (*KVBackend)(nil)

// Open abre (o crea) la base en path y migra la tabla. Usar "file::memory:?cache=shared" en tests.
func Open(path string, capacity int) (*KVBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("sqlite: abrir %s: %w", path, err)
	}
	return New(db, capacity)
}

// New usa una conexión gorm existente.
func New(db *gorm.DB, capacity int) (*KVBackend, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("sqlite: migrar kv_entries: %w", err)
	}
	return &KVBackend{db: db, capacity: capacity}, nil
}

func (b *KVBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := b.db.WithContext(ctx).Where("key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: leer %s: %w", key, err)
	}
	return e.Value, true, nil
}

func (b *KVBackend) Set(ctx context.Context, key, value string) error {
	if b.capacity > 0 && len(value) > b.capacity {
		return domain.ErrQuotaExceeded
	}
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("sqlite: escribir %s: %w", key, err)
	}
	return nil
}

func (b *KVBackend) Remove(ctx context.Context, key string) error {
	if err := b.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("sqlite: borrar %s: %w", key, err)
	}
	return nil
}

// Close cierra la conexión subyacente.
func (b *KVBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
