package utils

import (
	"io"
	"log"
	"os"
)

// LoggerConfig configures InitLogger.
type LoggerConfig struct {
	// text or json
	Format string
	// defaults to os.Stdout
	Output io.Writer
	// colored prefix for terminals
	EnableColors bool
}

// InitLogger returns the application logger.
func InitLogger(config ...LoggerConfig) *log.Logger {
	var cfg LoggerConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	prefix := "[Scholarly] "

	if cfg.Format == "json" {
		return log.New(cfg.Output, prefix, log.LstdFlags|log.LUTC|log.Lmsgprefix)
	}
	if cfg.EnableColors {
		prefix = "\033[36m" + prefix + "\033[0m"
	}
	return log.New(cfg.Output, prefix, log.LstdFlags|log.Lshortfile|log.LUTC)
}
