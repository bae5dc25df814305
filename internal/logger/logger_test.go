package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "none"} {
		for _, format := range []string{"text", "json"} {
			log, err := NewLogger(format, level)
			if err != nil {
				t.Fatalf("%s/%s: %v", format, level, err)
			}
			if log == nil {
				t.Fatalf("%s/%s: expected logger", format, level)
			}
		}
	}
}

func TestNewLoggerUnknown(t *testing.T) {
	if _, err := NewLogger("text", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := NewLogger("xml", "info"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestMustNewLoggerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustNewLogger("text", "loud")
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := (&ZapLogger{zap.New(core)}).With(zap.String("component", "feed"))
	log.Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["component"] != "feed" {
		t.Fatalf("expected component field")
	}
}
