package config

import (
	"testing"
	"time"

	"github.com/squadscore/squadscore/internal/platform/logging"
)

func setDevAuth(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_DEV_ALLOW_HEADER", "true")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	setDevAuth(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_SupabaseRequiredWithoutDevHeader(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AUTH_DEV_ALLOW_HEADER", "false")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_ANON_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SUPABASE_URL is empty without dev header mode")
	}
}

func TestLoad_DevHeaderForbiddenInProd(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("AUTH_DEV_ALLOW_HEADER", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when AUTH_DEV_ALLOW_HEADER=true in prod")
	}
}

func TestLoad_AuthConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_ANON_KEY", "anon-123")
	t.Setenv("AUTH_TIMEOUT", "4s")
	t.Setenv("AUTH_CIRCUIT_FAILURE_COUNT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SupabaseURL != "https://project.supabase.co" {
		t.Fatalf("unexpected SupabaseURL: %q", cfg.SupabaseURL)
	}
	if cfg.SupabaseAnonKey != "anon-123" {
		t.Fatalf("unexpected SupabaseAnonKey")
	}
	if cfg.AuthTimeout != 4*time.Second {
		t.Fatalf("unexpected AuthTimeout: %s", cfg.AuthTimeout)
	}
	if cfg.AuthCircuitFailureCount != 3 {
		t.Fatalf("unexpected AuthCircuitFailureCount: %d", cfg.AuthCircuitFailureCount)
	}
	if !cfg.AuthCircuitEnabled {
		t.Fatalf("expected AuthCircuitEnabled=true by default")
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	setDevAuth(t)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	setDevAuth(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	setDevAuth(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected cache defaults: enabled=%v ttl=%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if cfg.RealtimeBufferSize != 16 {
		t.Fatalf("unexpected RealtimeBufferSize: %d", cfg.RealtimeBufferSize)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected default log level: %s", cfg.LogLevel)
	}
}
