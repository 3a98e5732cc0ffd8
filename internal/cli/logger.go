package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/forge/internal/config"
	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/logging"
)

var (
	logFileWriter   io.WriteCloser //nolint:gochecknoglobals // Closed on shutdown
	logFileWriterMu sync.Mutex     //nolint:gochecknoglobals // Protects logFileWriter

	zerologGlobalMu sync.Mutex //nolint:gochecknoglobals // Protects the zerolog global logger
)

// InitLogger creates the CLI logger.
//
// Level: --verbose selects debug, --quiet selects warn, otherwise info.
// Console output is human-readable on a TTY without NO_COLOR and JSON on
// stderr otherwise. Entries are also written, with secrets redacted, to
// $FORGE_HOME/logs/forge.log with rotation. If the log file cannot be
// opened the logger continues on the console only.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	console := selectOutput()

	writer := console
	if fileWriter, err := createLogFileWriter(); err == nil {
		CloseLogFile()
		logFileWriterMu.Lock()
		logFileWriter = fileWriter
		logFileWriterMu.Unlock()
		writer = zerolog.MultiLevelWriter(console, fileWriter)
	}

	logger := newLogger(writer, selectLevel(verbose, quiet))
	setGlobalLogger(logger)
	return logger
}

// InitLoggerWithWriter creates a logger writing only to w.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	logger := newLogger(w, selectLevel(verbose, quiet))
	setGlobalLogger(logger)
	return logger
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).Hook(logging.NewSensitiveDataHook()).With().Timestamp().Logger()
}

// setGlobalLogger points the zerolog/log package logger at the CLI logger.
func setGlobalLogger(cliLogger zerolog.Logger) {
	zerologGlobalMu.Lock()
	defer zerologGlobalMu.Unlock()
	log.Logger = cliLogger
}

// CloseLogFile closes the rotating log file if it was opened.
func CloseLogFile() {
	logFileWriterMu.Lock()
	defer logFileWriterMu.Unlock()
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

func selectLevel(verbose, quiet bool) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// applyConfigLevel uses the configured logging level unless a verbosity flag was given.
func applyConfigLevel(logger zerolog.Logger, flags *GlobalFlags, cfg *config.Config) zerolog.Logger {
	if flags.Verbose || flags.Quiet || cfg == nil {
		return logger
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil || level == zerolog.NoLevel {
		return logger
	}
	return logger.Level(level)
}

func selectOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}
	return os.Stderr
}

// filteringWriteCloser redacts secrets before they reach the log file.
type filteringWriteCloser struct {
	filter *logging.FilteringWriter
	closer io.Closer
}

func (fwc *filteringWriteCloser) Write(p []byte) (n int, err error) {
	return fwc.filter.Write(p)
}

func (fwc *filteringWriteCloser) Close() error {
	return fwc.closer.Close()
}

func createLogFileWriter() (io.WriteCloser, error) {
	logPath, err := LogFilePath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lj := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    constants.LogMaxSizeMB,
		MaxBackups: constants.LogMaxBackups,
		MaxAge:     constants.LogMaxAgeDays,
		Compress:   constants.LogCompress,
	}

	return &filteringWriteCloser{
		filter: logging.NewFilteringWriter(lj),
		closer: lj,
	}, nil
}

// LogFilePath returns the path of the rotating CLI log file.
func LogFilePath() (string, error) {
	home, err := config.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir, constants.CLILogFileName), nil
}
