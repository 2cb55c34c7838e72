package logger

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a console logger writing to stderr.
func New() zerolog.Logger {
	return log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
