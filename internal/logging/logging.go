// Package logging configures diagnostics output.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation settings for the diagnostics file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
	dirMode    = 0o750
)

// Options selects where diagnostics go.
type Options struct {
	// Level is a logrus level name. Empty means warn.
	Level string
	// File, when set, receives JSON entries through a rotating writer.
	// Otherwise entries go to Stderr as text.
	File string
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// New returns a logger configured by opts and a closer for its output.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level := logrus.WarnLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)

	if opts.File == "" {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		logger.SetOutput(w)
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), dirMode); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	logger.SetOutput(file)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.WithField("file", opts.File).Debug("logger initialized")
	return logger, file, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
