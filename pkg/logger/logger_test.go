package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdmorgan/trading-portal/pkg/logger"
)

func TestNew_JSONConAppYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "debug", App: "jdmorgan-test", Out: &buf})

	c := l.Component("intake")
	c.Debug().Str("id", "sub-1").Msg("intención registrada")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "jdmorgan-test", line["app"])
	assert.Equal(t, "intake", line["component"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "sub-1", line["id"])
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "verboso", Out: &buf})
	l.Debug().Msg("no debe salir")
	assert.Empty(t, buf.String(), "debug se descarta con nivel info")
	l.Info().Msg("sí")
	assert.Contains(t, buf.String(), `"level":"info"`)
}
