package logger

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Qualiasolutions/theracoach/internal/config"
)

// NewLogger creates a new logger instance
func NewLogger(cfg *config.LoggingConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	}

	switch cfg.Output {
	case "stdout":
		logger.SetOutput(os.Stdout)
	case "file":
		logDir := filepath.Dir(cfg.File.Path)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}

		// Rotate with lumberjack
		logger.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSize, // megabytes
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge, // days
			Compress:   true,
		})
	default:
		logger.SetOutput(os.Stdout)
	}

	return logger, nil
}

// WithRequest adds common request fields to logger
func WithRequest(logger *logrus.Logger, identifier, path string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"identifier": identifier,
		"path":       path,
	})
}
