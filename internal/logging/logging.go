package logging

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Level      string
	File       string
	Production bool
}

// Init configures the standard logrus logger. Production deployments with a
// log file get warn level and size-based rotation.
func Init(opts Options) {
	formatter := &log.TextFormatter{
		ForceColors:     !opts.Production,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	log.SetFormatter(formatter)

	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		level = log.InfoLevel
	}

	var out io.Writer = os.Stdout
	if opts.Production && opts.File != "" {
		formatter.ForceColors = false
		formatter.DisableColors = true
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
		if level > log.WarnLevel {
			level = log.WarnLevel
		}
	}

	log.SetOutput(out)
	log.SetLevel(level)
}
