package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	if got := GetString("quote_currency"); got != "INR" {
		t.Errorf("expected quote currency INR, got %q", got)
	}
	if got := GetDuration("check_interval"); got != 30*time.Second {
		t.Errorf("expected check interval 30s, got %s", got)
	}
	if !GetBool("retire_on_notify_failure") {
		t.Error("expected failed notifications to retire alerts by default")
	}
	if got := GetInt("metrics_port"); got != 9090 {
		t.Errorf("expected metrics port 9090, got %d", got)
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("CHECK_INTERVAL", "45s")
	t.Setenv("STORE_BACKEND", "memory")

	if got := GetDuration("check_interval"); got != 45*time.Second {
		t.Errorf("expected check interval 45s, got %s", got)
	}
	if got := GetString("store_backend"); got != "memory" {
		t.Errorf("expected store backend memory, got %q", got)
	}
}
