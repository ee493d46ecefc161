package logger

import (
	"io"
	"os"
	"strings"

	"github.com/LavaJover/credit-ledger/internal/config"
	"github.com/sirupsen/logrus"
)

// New builds the process logger from the log_config section. Unknown levels
// fall back to info.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()

	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	out, err := output(cfg.LogOutput)
	if err != nil {
		return nil, err
	}
	log.SetOutput(out)
	return log, nil
}

func output(target string) (io.Writer, error) {
	switch target {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	return os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
