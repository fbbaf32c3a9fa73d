package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOptions configures the process-wide zerolog logger.
type LoggerOptions struct {
	Level   string // debug|info|warn|error|fatal|panic
	Pretty  bool   // human-readable console output (dev)
	File    string // optional path; rotated by lumberjack
	Service string // value of the "service" field on every line
}

// SetupLogger installs the global zerolog logger and returns a closer for the
// file sink (a no-op when no file is configured).
//
// Console output goes to stdout; when File is set, JSON lines are also
// written to a size-rotated file.
func SetupLogger(opts LoggerOptions) (closeFn func() error) {
	SetLogLevel(opts.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var console io.Writer = os.Stdout
	if opts.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	closeFn = func() error { return nil }
	out := console
	if path := strings.TrimSpace(opts.File); path != "" {
		rotator := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    100, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(console, rotator)
		closeFn = rotator.Close
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	log.Logger = ctx.Logger()
	zerolog.DefaultContextLogger = &log.Logger
	return closeFn
}
