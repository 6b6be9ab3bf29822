package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if Ping() != DefaultPing || Short() != DefaultShort || Medium() != DefaultMedium || Long() != DefaultLong {
		t.Errorf("unexpected defaults: %+v", Current())
	}
}

func TestConfigure_IgnoresZero(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})

	if Short() != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", Short())
	}
	if Ping() != DefaultPing {
		t.Errorf("Ping should keep default, got %v", Ping())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("TIMEOUT_PING", "500ms")
	t.Setenv("TIMEOUT_SHORT", "bogus")
	t.Setenv("TIMEOUT_MEDIUM", "-1s")
	t.Setenv("TIMEOUT_LONG", "2m")

	if n := ConfigureFromEnv(); n != 2 {
		t.Errorf("configured: got %d, want 2", n)
	}
	want := Config{Ping: 500 * time.Millisecond, Short: DefaultShort, Medium: DefaultMedium, Long: 2 * time.Minute}
	if Current() != want {
		t.Errorf("Current: got %+v, want %+v", Current(), want)
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "slow op")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["operation"]; got != "slow op" {
		t.Errorf("operation field: got %v", got)
	}
}

func TestWithTimeout_NoLogWhenCanceledEarly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "fast op")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
