package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestSetup_Level(t *testing.T) {
	defer log.SetOutput(os.Stderr)

	if err := Setup("debug", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Errorf("level: got %v", log.GetLevel())
	}
	if err := Setup("loud", ""); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestOutput(t *testing.T) {
	if Output("") != os.Stdout {
		t.Error("empty path should log to stdout")
	}

	path := filepath.Join(t.TempDir(), "pos.log")
	lj, ok := Output(path).(*lumberjack.Logger)
	if !ok {
		t.Fatalf("expected rotating file writer, got %T", Output(path))
	}
	if lj.Filename != path || lj.MaxSize != 32 {
		t.Errorf("writer: got %+v", lj)
	}
}
