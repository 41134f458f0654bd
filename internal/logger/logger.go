// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// Quill writes lifecycle, catalog, and resolver events to one JSON log per
// day under `<log dir>/YYYY-MM-DD.log`.  When running in an interactive TTY
// we tee the same events, human-readable, to stdout.  Rotation,
// compression, and retention are handled by Lumberjack; no external
// log-rotate job is required.
//
// Usage
// -----
//
//	log, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Tee: logger.IsTTY()})
//	if err != nil { … }
//	log.Infow("catalog built", "locale", "en")
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Errors are written to the same sink via `ErrorOutput`.
// • An empty Dir skips the file sink (CLI runs).
// • Oxford commas, two spaces after periods.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	Dir    string    // log directory; empty disables the file sink
	Level  string    // debug, info, warn, error; empty means info
	Tee    bool      // also write to Stdout
	Stdout io.Writer // console sink; nil means os.Stdout
}

// New returns a *zap.SugaredLogger and installs it as the process-wide
// default via zap.ReplaceGlobals.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := zap.InfoLevel
	if opts.Level != "" {
		if err := level.Set(opts.Level); err != nil {
			return nil, err
		}
	}
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	var (
		cores   []zapcore.Core
		errSink = zapcore.AddSync(os.Stderr)
	)

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, time.Now().Format("2006-01-02")+".log"),
			MaxSize:    50, // MB
			MaxBackups: 7,  // keep last seven files
			MaxAge:     14, // days
			Compress:   true,
		}
		errSink = zapcore.AddSync(fileSink)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), errSink, level))
	}

	if opts.Tee || opts.Dir == "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(out),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(errSink),
	).Sugar()

	zap.ReplaceGlobals(z.Desugar())

	z.Debugw("logger online", "tee", opts.Tee, "level", level.String())
	return z, nil
}

// IsTTY returns true when stdout is a character device.
func IsTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
