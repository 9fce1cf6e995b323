package logger

import (
	"errors"
	"testing"

	"imgharvest/pkg/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if log == nil {
		t.Fatal("Expected non-nil logger")
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "chatty"})
	if err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestNewWithLogDir(t *testing.T) {
	dir := t.TempDir()
	log, err := New(&config.LoggingConfig{Level: "info", Dir: dir})
	if err != nil {
		t.Fatalf("Failed to create logger with file output: %v", err)
	}
	log.Info("hello")
}

func TestParseLogLevel(t *testing.T) {
	valid := []string{"debug", "info", "warn", "warning", "error", "fatal", "disabled", "INFO"}
	for _, level := range valid {
		if _, err := parseLogLevel(level); err != nil {
			t.Errorf("Expected %q to parse, got error: %v", level, err)
		}
	}

	if _, err := parseLogLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestTestLoggerCapturesMessages(t *testing.T) {
	log := NewTestLogger()

	log.Info("plain message")
	log.WithField("page_url", "https://example.org").Error("tagged message")
	log.WithError(errors.New("boom")).Warn("with error")

	if !log.HasMessage("INFO", "plain message") {
		t.Error("Expected plain message to be captured")
	}
	if !log.HasMessage("ERROR", "tagged message") {
		t.Error("Expected tagged message to be captured")
	}

	messages := log.Messages()
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	if messages[1].Fields["page_url"] != "https://example.org" {
		t.Error("Expected field to be preserved on captured message")
	}
	if messages[2].Fields["error"] != "boom" {
		t.Error("Expected error field to be preserved")
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	log, err := New(&config.LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	child := log.WithField("key", "value")
	if child == log {
		t.Error("Expected WithField to return a new logger")
	}
}
