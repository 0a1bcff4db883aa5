package repository

import "context"

// KVBackend es el puerto de almacenamiento clave/valor sobre el que se persiste el documento.
// Set devuelve domain.ErrQuotaExceeded cuando el valor supera la capacidad del backend.
type KVBackend interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// ChangeWatcher lo implementan los backends que notifican escrituras de otras instancias.
type ChangeWatcher interface {
	Watch(ctx context.Context, onChange func(key string)) error
}
