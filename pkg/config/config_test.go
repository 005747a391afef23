package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver, "sin base de datos se usa el almacén en memoria")
	assert.Equal(t, int64(100*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, 15*time.Second, cfg.Admin.PollInterval)
	assert.Equal(t, time.Hour, cfg.Housekeeping.UnverifiedTTL)
	assert.Equal(t, 500, cfg.Store.BatchLimit)
	assert.True(t, cfg.Auth.AnonymousEnabled)
	assert.Equal(t, "info@jdmorgan.ca", cfg.Auth.BootstrapAdminEmail)
	assert.Equal(t, "jd_morgan_legal_agreed", cfg.Legal.CookieName)
}

func TestFromViper_DatabaseURLSeleccionaPostgres(t *testing.T) {
	v := viper.New()
	v.Set("DATABASE_URL", "postgres://u:p@db:5432/jd")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/jd", cfg.DB.ConnectionString())
}

func TestFromViper_ParseaDuracionesYBooleanos(t *testing.T) {
	v := viper.New()
	v.Set("ADMIN_POLL_INTERVAL", "30")
	v.Set("HOUSEKEEPING_INTERVAL", "10m")
	v.Set("AUTH_ANONYMOUS_ENABLED", "false")
	v.Set("STORE_DRIVER", "BOLT")
	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Admin.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.Housekeeping.Interval)
	assert.False(t, cfg.Auth.AnonymousEnabled)
	assert.Equal(t, DriverBolt, cfg.Store.Driver)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "h", Port: 5432, User: "u", Password: "p@ss/word", DBName: "jd", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@h:5432/jd?sslmode=disable", c.DSN())
}
