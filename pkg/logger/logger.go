// Package logger configura zerolog para el servidor y la CLI de mantenimiento.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env   string // development -> consola legible; cualquier otro -> JSON
	Level string // trace, debug, info, warn, error
	App   string // se añade como campo "app" si no está vacío
	// Out destino de la salida; os.Stdout si es nil.
	Out io.Writer
}

// Logger zerolog con los campos comunes de la aplicación.
type Logger struct {
	zerolog.Logger
}

// New crea el logger estructurado y lo deja como logger global de zerolog.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}
	ctx := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.App != "" {
		ctx = ctx.Str("app", cfg.App)
	}
	zl := ctx.Logger()
	log.Logger = zl
	return &Logger{Logger: zl}
}

// parseLevel nivel por nombre; info si es desconocido o vacío.
func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop logger que descarta todo.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Component sublogger etiquetado con el nombre del componente.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Zerolog devuelve el logger interno para APIs que reciben zerolog.Logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.Logger
}
