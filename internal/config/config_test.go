package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")

	// App
	t.Setenv("DB_PATH", "db.sqlite")
	t.Setenv("SEED_PATH", "seeds")
	t.Setenv("THRESHOLD", "0.75")
	t.Setenv("TOP_K", "5")
	t.Setenv("MAX_QUERY_RUNES", "100")

	// Generation backend
	t.Setenv("GEN_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("GEN_API_KEY", "sk-test")
	t.Setenv("GEN_MODEL", "test-model")
	t.Setenv("GEN_MAX_TOKENS", "256")
	t.Setenv("GEN_TEMPERATURE", "0.2")
	t.Setenv("GEN_TIMEOUT", "5s")

	// Rate limiting (use invalids for parse to fall back to defaults)
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging
	if cfg.LogLevel != "warn" || !cfg.LogPretty {
		t.Fatalf("logging unexpected: %+v", cfg)
	}

	// App
	if cfg.DBPath != "db.sqlite" || cfg.SeedPath != "seeds" ||
		cfg.Threshold != 0.75 || cfg.TopK != 5 || cfg.MaxQueryRunes != 100 {
		t.Fatalf("app fields unexpected: %+v", cfg)
	}

	// Generation backend
	wantGen := GenConfig{
		BaseURL:     "http://localhost:9999/v1",
		APIKey:      "sk-test",
		Model:       "test-model",
		MaxTokens:   256,
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	}
	if cfg.Gen != wantGen {
		t.Fatalf("gen fields unexpected: %+v", cfg.Gen)
	}

	// Rate limiting fell back to defaults on parse errors
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate fields unexpected: %+v", cfg)
	}

	// CORS list trimmed with empties dropped
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors unexpected: %+v", cfg.CORS)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"negative threshold", "THRESHOLD", "-0.1", "THRESHOLD"},
		{"zero topk", "TOP_K", "0", "TOP_K"},
		{"negative query guard", "MAX_QUERY_RUNES", "-1", "MAX_QUERY_RUNES"},
		{"zero gen tokens", "GEN_MAX_TOKENS", "0", "GEN_MAX_TOKENS"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"bad sampler", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail for %s=%s", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %s", err, tc.want)
			}
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Setenv("H_STR", "x")
	t.Setenv("H_BOOL", "off")
	t.Setenv("H_DUR", "90s")
	t.Setenv("H_FLOAT", "2.5")

	if getenv("H_STR", "d") != "x" || getenv("H_MISSING", "d") != "d" {
		t.Fatal("getenv")
	}
	if getbool("H_BOOL", true) || !getbool("H_MISSING", true) {
		t.Fatal("getbool")
	}
	if getdur("H_DUR", time.Second) != 90*time.Second || getdur("H_MISSING", time.Second) != time.Second {
		t.Fatal("getdur")
	}
	if getfloat("H_FLOAT", 1) != 2.5 || getfloat("H_MISSING", 1) != 1 {
		t.Fatal("getfloat")
	}
	if splitCSV("") != nil {
		t.Fatal("splitCSV empty")
	}
}
