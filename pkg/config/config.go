package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends de almacenamiento admitidos.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Storage StorageConfig
	Redis   RedisConfig
	DB      DBConfig
	Draft   DraftConfig
	Log     LogConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// AuthConfig acceso del titular. Sin hash la API queda abierta (uso local).
type AuthConfig struct {
	OwnerPasswordHash string // bcrypt
}

// Enabled indica si la API exige token.
func (c AuthConfig) Enabled() bool {
	return c.OwnerPasswordHash != ""
}

// StorageConfig backend y capacidad del documento persistido.
type StorageConfig struct {
	Backend       string // memory, sqlite, redis, postgres
	Key           string
	CapacityBytes int
	SQLitePath    string
}

// RedisConfig conexión a Redis y canal de notificación de cambios.
type RedisConfig struct {
	URL     string
	Channel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// DraftConfig autoguardado del borrador.
type DraftConfig struct {
	AutosaveDelay time.Duration
}

// LogConfig nivel del logger.
type LogConfig struct {
	Level string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, STORAGE_BACKEND, REDIS_URL, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración a partir de una instancia de Viper ya cargada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "devis-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60*12),
			Issuer:     getString(v, "JWT_ISSUER", "devis-api"),
		},
		Auth: AuthConfig{
			OwnerPasswordHash: getString(v, "AUTH_OWNER_PASSWORD_HASH", ""),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getString(v, "STORAGE_BACKEND", BackendSQLite)),
			Key:           getString(v, "STORAGE_KEY", "devis-app-data"),
			CapacityBytes: getInt(v, "STORAGE_CAPACITY_BYTES", 5*1024*1024),
			SQLitePath:    getString(v, "STORAGE_SQLITE_PATH", "devis.db"),
		},
		Redis: RedisConfig{
			URL:     getString(v, "REDIS_URL", "redis://localhost:6379/0"),
			Channel: getString(v, "REDIS_CHANNEL", "devis:changes"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "devis"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Draft: DraftConfig{
			AutosaveDelay: getDuration(v, "DRAFT_AUTOSAVE_DELAY", 2*time.Second),
		},
		Log: LogConfig{
			Level: getString(v, "LOG_LEVEL", "info"),
		},
	}

	switch cfg.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendRedis, BackendPostgres:
	default:
		return nil, fmt.Errorf("config: STORAGE_BACKEND desconocido %q", cfg.Storage.Backend)
	}
	if cfg.Storage.CapacityBytes <= 0 {
		return nil, fmt.Errorf("config: STORAGE_CAPACITY_BYTES debe ser positivo")
	}
	if cfg.Auth.Enabled() && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET es obligatorio cuando AUTH_OWNER_PASSWORD_HASH está definido")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d < 0 {
		return def
	}
	return d
}
