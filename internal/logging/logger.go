// Package logging configura o logger estruturado (zerolog) usado por todo o backend.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controla nível, formato e destino dos logs.
type Config struct {
	// Level aceita debug, info, warn ou error (padrão: info).
	Level string
	// Pretty liga a saída legível (ConsoleWriter) em vez de JSON.
	Pretty bool
	// Output padrão: os.Stderr.
	Output io.Writer
}

func DefaultConfig() Config {
	return Config{Level: "info", Output: os.Stderr}
}

// Setup aplica o nível global, instala o logger em log.Logger e o retorna.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Str("service", "nexo-backend").Logger()
	log.Logger = logger
	return logger
}

// ParseLevel converte o nível textual; valores desconhecidos caem em info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger deriva um logger do global com o campo component preenchido.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
