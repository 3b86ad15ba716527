package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the global logrus logger. With an empty path it logs to
// stdout, otherwise to a size-rotated file.
func Setup(level, path string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("unknown logging level %q", level)
	}
	log.SetLevel(lvl)
	log.SetOutput(Output(path))
	log.SetFormatter(&log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	})
	return nil
}

func Output(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // megabytes
		MaxBackups: 2,
		MaxAge:     28, // days
		Compress:   true,
	}
}
