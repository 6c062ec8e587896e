package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultDir        = "logs"
	fileBufferSize    = 32 * 1024
	fileQueueCapacity = 1000
)

type Options struct {
	// Name is the log file name without extension, e.g. "proxy".
	Name string
	// Level overrides LOG_LEVEL when set.
	Level string
	// Dir defaults to ./logs.
	Dir string
	// Console mirrors every entry to stdout.
	Console bool
}

func NewFormatter() logrus.Formatter {
	return &logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	}
}

func ParseLevel(level string) logrus.Level {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger builds the JSON logger used by every component. Entries go to
// an async file writer under opts.Dir; close flushes it.
func NewLogger(opts Options) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(NewFormatter())
	logger.SetLevel(ParseLevel(opts.Level))

	name := opts.Name
	if name == "" {
		name = "proxy"
	}
	dir := opts.Dir
	if dir == "" {
		dir = defaultDir
	}
	dir = filepath.Clean(dir)
	logFile := filepath.Join(dir, filepath.Base(name)+".log")

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	writer, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(writer)

	if opts.Console {
		logger.AddHook(NewConsoleHook(os.Stdout))
	}
	return logger, writer.Close, nil
}
