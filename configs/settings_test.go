package config

import (
	"os"
	"testing"
	"time"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseSettingsDefaults(t *testing.T) {
	unsetEnv(t, "LEDGER_DRIVER", "LEDGER_SERVICE_PORT", "INSIGHT_TIMEOUT", "CORS_ORIGINS", "RATE_LIMIT", "LEDGER_TIMEZONE", "SQLITE_PATH")

	s, err := ParseSettings()
	if err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	if s.Driver != DriverSQLite {
		t.Fatalf("driver = %q, want %q", s.Driver, DriverSQLite)
	}
	if s.Port != "5000" {
		t.Fatalf("port = %q, want 5000", s.Port)
	}
	if s.InsightTimeout != 20*time.Second {
		t.Fatalf("insight timeout = %v", s.InsightTimeout)
	}
	if len(s.Origins) != 2 {
		t.Fatalf("origins = %v", s.Origins)
	}
}

func TestParseSettingsRequiresPostgresURL(t *testing.T) {
	t.Setenv("LEDGER_DRIVER", "postgres")
	t.Setenv("POSTGRES_URL", "")

	if _, err := ParseSettings(); err == nil {
		t.Fatal("expected error for missing POSTGRES_URL")
	}
}

func TestParseSettingsRejectsUnknownDriver(t *testing.T) {
	t.Setenv("LEDGER_DRIVER", "oracle")

	if _, err := ParseSettings(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSettingsLocation(t *testing.T) {
	s := Settings{Timezone: "UTC"}
	loc, err := s.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc != time.UTC {
		t.Fatalf("location = %v, want UTC", loc)
	}

	s.Timezone = "Nowhere/Atlantis"
	if _, err := s.Location(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
