package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de almacenamiento soportados.
const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
	DriverMemory   = "memory"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App          AppConfig
	DB           DBConfig
	Store        StoreConfig
	JWT          JWTConfig
	HTTP         HTTPConfig
	Auth         AuthConfig
	Upload       UploadConfig
	Admin        AdminConfig
	Housekeeping HousekeepingConfig
	SMTP         SMTPConfig
	Legal        LegalConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env           string // development, staging, production
	Name          string
	LogLevel      string
	PublicBaseURL string
	CatalogPath   string // vacío = catálogo embebido
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

// ConnectionString DATABASE_URL o, si falta, el DSN armado con los campos sueltos.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN arma la URL postgres:// escapando usuario y contraseña.
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

// Configured indica si hay datos de conexión explícitos.
func (c DBConfig) Configured() bool {
	return c.DatabaseURL != "" || c.Password != ""
}

// StoreConfig selección del backend de documentos y blobs.
type StoreConfig struct {
	Driver     string // postgres | bolt | memory
	BoltPath   string
	BatchLimit int
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
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

// AuthConfig opciones del proveedor de identidad.
type AuthConfig struct {
	AnonymousEnabled       bool
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// UploadConfig límites de adjuntos.
type UploadConfig struct {
	MaxBytes int64
}

// AdminConfig opciones del back-office.
type AdminConfig struct {
	PollInterval time.Duration
}

// HousekeepingConfig opciones de los trabajos de limpieza.
type HousekeepingConfig struct {
	UnverifiedTTL time.Duration
	Interval      time.Duration // 0 = sin ejecución periódica
	PageSize      int
}

// SMTPConfig servidor de correo saliente. Host vacío = correos solo al log.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// LegalConfig aviso legal.
type LegalConfig struct {
	CookieName string
}

// Load combina .env, config.env y el entorno; el entorno manda.
// Falla solo si STORE_DRIVER trae un valor desconocido.
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

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:           getString(v, "APP_ENV", "development"),
			Name:          getString(v, "APP_NAME", "jdmorgan-trading"),
			LogLevel:      getString(v, "LOG_LEVEL", "info"),
			PublicBaseURL: strings.TrimRight(getString(v, "PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
			CatalogPath:   getString(v, "CATALOG_PATH", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "jdmorgan"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getString(v, "STORE_DRIVER", "")),
			BoltPath:   getString(v, "BOLT_PATH", "data/jdmorgan.db"),
			BatchLimit: getInt(v, "STORE_BATCH_LIMIT", 500),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "jdmorgan-trading"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Auth: AuthConfig{
			AnonymousEnabled:       getBool(v, "AUTH_ANONYMOUS_ENABLED", true),
			BootstrapAdminEmail:    getString(v, "BOOTSTRAP_ADMIN_EMAIL", "info@jdmorgan.ca"),
			BootstrapAdminPassword: getString(v, "BOOTSTRAP_ADMIN_PASSWORD", ""),
		},
		Upload: UploadConfig{
			MaxBytes: getInt64(v, "UPLOAD_MAX_BYTES", 100*1024*1024),
		},
		Admin: AdminConfig{
			PollInterval: getDuration(v, "ADMIN_POLL_INTERVAL", 15*time.Second),
		},
		Housekeeping: HousekeepingConfig{
			UnverifiedTTL: getDuration(v, "HOUSEKEEPING_UNVERIFIED_TTL", time.Hour),
			Interval:      getDuration(v, "HOUSEKEEPING_INTERVAL", 0),
			PageSize:      getInt(v, "HOUSEKEEPING_PAGE_SIZE", 200),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "SMTP_HOST", ""),
			Port:     getInt(v, "SMTP_PORT", 587),
			User:     getString(v, "SMTP_USER", ""),
			Password: getString(v, "SMTP_PASSWORD", ""),
			From:     getString(v, "SMTP_FROM", "JD Morgan Global Trading <no-reply@jdmorgan.ca>"),
		},
		Legal: LegalConfig{
			CookieName: getString(v, "LEGAL_COOKIE_NAME", "jd_morgan_legal_agreed"),
		},
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverMemory
		if cfg.DB.Configured() {
			cfg.Store.Driver = DriverPostgres
		}
	}
	switch cfg.Store.Driver {
	case DriverPostgres, DriverBolt, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.Store.Driver)
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if !v.IsSet(key) {
		return def
	}
	return v.GetString(key)
}

// getInt y getInt64 toleran espacios; un valor no numérico deja el default.
func getInt(v *viper.Viper, key string, def int) int {
	return int(getInt64(v, key, int64(def)))
}

func getInt64(v *viper.Viper, key string, def int64) int64 {
	if !v.IsSet(key) {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v.GetString(key)), 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return def
		}
		return b
	}
	return def
}

// getDuration acepta "15s", "1h" o un número entero de segundos.
func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	raw := strings.TrimSpace(v.GetString(key))
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
