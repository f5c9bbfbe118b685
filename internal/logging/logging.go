package logging

import (
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/mineduel/mineduel-server/internal/config"
)

// New builds the application logger: colored text to stderr, plus a
// rotating JSON file when LOG_FILE is configured.
func New(cfg *config.App) (*logrus.Logger, error) {
	log := logrus.New()

	level := logrus.InfoLevel
	if cfg.Development {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: cfg.Development})

	if cfg.LogFile != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: 3,
			MaxAge:     cfg.LogMaxAge,
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return nil, err
		}
		log.AddHook(hook)
	}

	return log, nil
}
