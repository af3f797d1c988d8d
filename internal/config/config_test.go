package config

import (
	"os"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	os.Setenv("TEST_STR", "value")
	os.Setenv("TEST_INT", "123")
	os.Setenv("TEST_BOOL_TRUE", "true")
	os.Setenv("TEST_BOOL_FALSE", "false")

	if v := getEnv("TEST_STR", ""); v != "value" {
		t.Fatalf("expected value, got %s", v)
	}
	if v := getEnvAsInt("TEST_INT", 0); v != 123 {
		t.Fatalf("expected 123, got %d", v)
	}
	if !getEnvAsBool("TEST_BOOL_TRUE", false) {
		t.Fatalf("expected true")
	}
	if getEnvAsBool("TEST_BOOL_FALSE", true) {
		t.Fatalf("expected false")
	}
}

func TestLoadDefaults(t *testing.T) {
	// ensure no interfering env vars
	_ = os.Unsetenv("SERVER_PORT")
	_ = os.Unsetenv("CLAIM_RATE_LIMIT_WINDOW_SECONDS")
	cfg := Load()
	if cfg.Server.Port == "" {
		t.Fatalf("expected default server port set")
	}
	if cfg.Claim.RateLimitWindowSeconds != 60 {
		t.Fatalf("expected default claim window 60, got %d", cfg.Claim.RateLimitWindowSeconds)
	}
	if cfg.Claim.GeneratedCodeLength != 10 {
		t.Fatalf("expected default code length 10, got %d", cfg.Claim.GeneratedCodeLength)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("CLAIM_MAX_RETRIES", "5")
	os.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")
	defer os.Unsetenv("CLAIM_MAX_RETRIES")
	defer os.Unsetenv("KAFKA_BROKERS")

	cfg := Load()
	if cfg.Claim.MaxRetries != 5 {
		t.Fatalf("expected claim retries 5, got %d", cfg.Claim.MaxRetries)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("expected two brokers, got %v", cfg.Kafka.Brokers)
	}
}
