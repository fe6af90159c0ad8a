package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const logsDir = "logs"

type Options struct {
	// Level is a logrus level name; unknown values fall back to info.
	Level string
	// File is the log file name inside the logs directory. Empty disables
	// file output and logs go straight to stdout.
	File    string
	Console bool
}

func DefaultOptions() Options {
	return Options{
		Level:   os.Getenv("LOG_LEVEL"),
		File:    "moderation.log",
		Console: true,
	}
}

// NewLogger builds the JSON logger shared by every component. The returned
// func flushes buffered output and must be called on shutdown.
func NewLogger(opts Options) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if opts.File == "" {
		logger.SetOutput(os.Stdout)
		return logger, func() {}, nil
	}

	logFile := filepath.Clean(filepath.Join(logsDir, opts.File))
	if !strings.HasPrefix(logFile, logsDir+string(filepath.Separator)) {
		return nil, nil, fmt.Errorf("invalid log file %q: must be in the %s directory", opts.File, logsDir)
	}
	if err := os.MkdirAll(logsDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter, err := NewAsyncFileWriter(logFile, 32*1024)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(fileWriter)

	var consoleHook *AsyncConsoleHook
	if opts.Console {
		consoleHook = NewAsyncConsoleHook(1000)
		logger.AddHook(consoleHook)
	}

	closeFn := func() {
		if consoleHook != nil {
			consoleHook.Close()
		}
		fileWriter.Close()
	}
	return logger, closeFn, nil
}
