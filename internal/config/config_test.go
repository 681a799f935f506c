package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("MAX_BORDER_PERCENT", "")
	t.Setenv("CHANNEL_POLICY", "")
	t.Setenv("AUTO_ORIENT", "")
	t.Setenv("MAX_REQUEST_BODY_SIZE", "")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxBorderPercent != 500 {
		t.Errorf("Expected default max border 500, got %d", cfg.MaxBorderPercent)
	}
	if cfg.JPEGQuality != 95 {
		t.Errorf("Expected default JPEG quality 95, got %d", cfg.JPEGQuality)
	}
	if cfg.ChannelPolicy != ChannelPolicyConvert {
		t.Errorf("Expected convert policy, got %s", cfg.ChannelPolicy)
	}
	if cfg.StaticDir != "static" {
		t.Errorf("Expected static dir 'static', got %s", cfg.StaticDir)
	}
	if cfg.ProcessingTimeout != 20*time.Second {
		t.Errorf("Expected 20s processing timeout, got %s", cfg.ProcessingTimeout)
	}
	if cfg.AutoOrient {
		t.Error("Expected auto orientation to be off by default")
	}
	if cfg.MaxRequestBodySize != 32<<20 {
		t.Errorf("Expected 32MiB body limit, got %d", cfg.MaxRequestBodySize)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("PROCESSING_TIMEOUT", "5s")
	t.Setenv("MAX_BORDER_PERCENT", "100")
	t.Setenv("CHANNEL_POLICY", "REJECT")
	t.Setenv("AUTO_ORIENT", "true")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.ServerAddress() != "127.0.0.1:9090" {
		t.Errorf("Unexpected server address %s", cfg.ServerAddress())
	}
	if cfg.ProcessingTimeout != 5*time.Second {
		t.Errorf("Expected 5s, got %s", cfg.ProcessingTimeout)
	}
	if cfg.MaxBorderPercent != 100 {
		t.Errorf("Expected 100, got %d", cfg.MaxBorderPercent)
	}
	if cfg.ChannelPolicy != ChannelPolicyReject {
		t.Errorf("Expected reject policy, got %s", cfg.ChannelPolicy)
	}
	if !cfg.AutoOrient {
		t.Error("Expected auto orientation to be enabled")
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"SECRET_KEY": ""}},
		{"bad port", map[string]string{"SECRET_KEY": "s", "PORT": "abc"}},
		{"port out of range", map[string]string{"SECRET_KEY": "s", "PORT": "70000"}},
		{"bad jpeg quality", map[string]string{"SECRET_KEY": "s", "JPEG_QUALITY": "0"}},
		{"negative border cap", map[string]string{"SECRET_KEY": "s", "MAX_BORDER_PERCENT": "-1"}},
		{"unknown policy", map[string]string{"SECRET_KEY": "s", "CHANNEL_POLICY": "guess"}},
		{"zero body limit", map[string]string{"SECRET_KEY": "s", "MAX_REQUEST_BODY_SIZE": "0"}},
		{"negative job limit", map[string]string{"SECRET_KEY": "s", "MAX_CONCURRENT_JOBS": "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadFromEnv(); err == nil {
				t.Error("Expected error, got none")
			}
		})
	}
}
