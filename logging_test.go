package tasktree

import "testing"

func TestNewDefaultLoggerConstructsWithoutPanic(t *testing.T) {
	log := NewDefaultLogger()
	if log == nil {
		t.Fatal("NewDefaultLogger returned nil")
	}
	log.Info().Str("k", "v").Log("smoke test")
}

func TestNopLoggerConstructsWithoutPanic(t *testing.T) {
	log := nopLogger()
	if log == nil {
		t.Fatal("nopLogger returned nil")
	}
	log.Info().Log("should be suppressed")
}
