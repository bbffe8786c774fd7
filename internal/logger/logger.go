package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide log sinks.
type Options struct {
	Dev     bool
	LogPath string
	Level   string
	// Console receives dev-mode output. The TUI passes its debug console here;
	// other commands leave it nil and get stderr.
	Console io.Writer
}

type field struct {
	key   string
	value interface{}
}

// Logger is a tagged handle on the shared sink. It is cheap to create and safe to
// create before InitLogger has run; until then everything is discarded.
type Logger struct {
	tag    string
	fields []field
}

var (
	mu      sync.RWMutex
	base    = zerolog.Nop()
	logFile io.Closer
)

func InitLogger(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", opts.Level)
		}
		level = parsed
	}

	var writers []io.Writer
	if opts.Dev {
		out := opts.Console
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, consoleWriter(out, opts.Console != nil))
	}

	var file *lumberjack.Logger
	if opts.LogPath != "" {
		if err := os.MkdirAll(opts.LogPath, 0o755); err != nil {
			return errors.Wrap(err, "could not create log directory")
		}
		timestamp := time.Now().Format("20060102_150405")
		file = &lumberjack.Logger{
			Filename:   filepath.Join(opts.LogPath, fmt.Sprintf("accbuddy_log_%s.log", timestamp)),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: file, NoColor: true, TimeFormat: time.DateTime})
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	if len(writers) == 0 {
		base = zerolog.Nop()
		return nil
	}
	base = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	if file != nil {
		logFile = file
	}
	return nil
}

// consoleWriter formats for a terminal, or for a tview text view when dynamic is set.
func consoleWriter(out io.Writer, dynamic bool) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	if dynamic {
		w.NoColor = true
		w.FormatLevel = func(i interface{}) string {
			level, _ := i.(string)
			switch level {
			case zerolog.LevelErrorValue, zerolog.LevelFatalValue:
				return "[red]" + level + "[-]"
			case zerolog.LevelWarnValue:
				return "[yellow]" + level + "[-]"
			default:
				return "[green]" + level + "[-]"
			}
		}
	}
	return w
}

func NewLogger(tag string) *Logger {
	return &Logger{tag: tag}
}

// With returns a copy of l that attaches key=value to every entry.
func (l *Logger) With(key string, value interface{}) *Logger {
	fields := make([]field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)
	return &Logger{tag: l.tag, fields: append(fields, field{key: key, value: value})}
}

func (l *Logger) log(level zerolog.Level, v ...interface{}) {
	mu.RLock()
	zl := base
	mu.RUnlock()

	event := zl.WithLevel(level)
	if event == nil {
		return
	}
	event = event.Str("tag", l.tag)
	for _, f := range l.fields {
		event = event.Interface(f.key, f.value)
	}
	event.Msg(fmt.Sprint(v...))
}

func (l *Logger) Debug(v ...interface{}) {
	l.log(zerolog.DebugLevel, v...)
}

func (l *Logger) Info(v ...interface{}) {
	l.log(zerolog.InfoLevel, v...)
}

func (l *Logger) Warn(v ...interface{}) {
	l.log(zerolog.WarnLevel, v...)
}

func (l *Logger) Error(v ...interface{}) {
	l.log(zerolog.ErrorLevel, v...)
}

func (l *Logger) Fatal(v ...interface{}) {
	l.log(zerolog.FatalLevel, v...)
	_ = Close()
	os.Exit(1)
}

// Close flushes and releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.Nop()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}
