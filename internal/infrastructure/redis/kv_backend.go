// Package redis implementa el backend clave/valor sobre Redis con aviso de cambios por pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/devis-api/internal/domain"
	"github.com/jhoicas/devis-api/internal/domain/repository"
	"github.com/jhoicas/devis-api/pkg/logger"
)

// DefaultChannel canal de avisos de escritura.
const DefaultChannel = "devis:changes"

const pingTimeout = 3 * time.Second

// Connect parsea la URL (redis://…) y comprueba la conexión.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: url inválida: %w", err)
	}
	client := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// changeEvent se publica tras cada Set. Instance evita notificar a quien escribió.
type changeEvent struct {
	Instance string `json:"instance"`
	Key      string `json:"key"`
}

// KVBackend guarda cada clave como string de Redis.
type KVBackend struct {
	client   *goredis.Client
	channel  string
	instance string
	capacity int
	log      *logger.Logger
}

var (
	_ repository.KVBackend     = (*KVBackend)(nil)
	_ repository.ChangeWatcher = (*KVBackend)(nil)
)

// New crea el backend. channel vacío usa DefaultChannel; capacity <= 0 desactiva el límite.
func New(client *goredis.Client, channel string, capacity int, log *logger.Logger) *KVBackend {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &KVBackend{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
		capacity: capacity,
		log:      log,
	}
}

func (b *KVBackend) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: leer %s: %w", key, err)
	}
	return v, true, nil
}

// Set escribe el valor y publica el aviso en la misma transacción.
func (b *KVBackend) Set(ctx context.Context, key, value string) error {
	if b.capacity > 0 && len(value) > b.capacity {
		return domain.ErrQuotaExceeded
	}
	payload, err := json.Marshal(changeEvent{Instance: b.instance, Key: key})
	if err != nil {
		return err
	}
	_, err = b.client.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, key, value, 0)
		p.Publish(ctx, b.channel, payload)
		return nil
	})
	if err != nil {
		if isOOM(err) {
			return fmt.Errorf("redis: %w: %v", domain.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("redis: escribir %s: %w", key, err)
	}
	return nil
}

func (b *KVBackend) Remove(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis: borrar %s: %w", key, err)
	}
	return nil
}

// Watch bloquea hasta que ctx termina y llama a onChange por cada escritura de otra instancia.
func (b *KVBackend) Watch(ctx context.Context, onChange func(key string)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("redis: suscribir %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev changeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("aviso de cambio ilegible")
				continue
			}
			if ev.Instance == b.instance {
				continue
			}
			onChange(ev.Key)
		}
	}
}

// isOOM detecta el error de Redis con maxmemory alcanzado.
func isOOM(err error) bool {
	var rerr goredis.Error
	if errors.As(err, &rerr) {
		msg := rerr.Error()
		return len(msg) >= 3 && msg[:3] == "OOM"
	}
	return false
}
