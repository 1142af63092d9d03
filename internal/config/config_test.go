package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test default values
	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.Version != "1.0.0" {
		t.Errorf("Expected default version to be '1.0.0', got '%s'", cfg.Version)
	}

	if cfg.ServerName != "mcp-pdf-sign" {
		t.Errorf("Expected default server name to be 'mcp-pdf-sign', got '%s'", cfg.ServerName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("Expected default max file size to be 50MB, got %d", cfg.MaxFileSize)
	}

	if cfg.MaxUploadSize != 5*1024*1024 {
		t.Errorf("Expected default max upload size to be 5MB, got %d", cfg.MaxUploadSize)
	}

	// Remote signing is off until an endpoint is configured
	if cfg.RemoteEnabled() {
		t.Error("Expected remote signing to be disabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func(mutate func(*Config)) *Config {
		cfg := DefaultConfig()
		mutate(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config - stdio mode",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "valid config - server mode",
			config:  valid(func(c *Config) { c.Mode = "server" }),
			wantErr: false,
		},
		{
			name:    "invalid mode",
			config:  valid(func(c *Config) { c.Mode = "invalid" }),
			wantErr: true,
		},
		{
			name: "invalid port - too low (server mode)",
			config: valid(func(c *Config) {
				c.Mode = "server"
				c.Port = 0
			}),
			wantErr: true,
		},
		{
			name: "invalid port - too high (server mode)",
			config: valid(func(c *Config) {
				c.Mode = "server"
				c.Port = 70000
			}),
			wantErr: true,
		},
		{
			name:    "invalid port ignored in stdio mode",
			config:  valid(func(c *Config) { c.Port = 0 }),
			wantErr: false,
		},
		{
			name:    "non-positive max file size",
			config:  valid(func(c *Config) { c.MaxFileSize = 0 }),
			wantErr: true,
		},
		{
			name:    "non-positive max upload size",
			config:  valid(func(c *Config) { c.MaxUploadSize = -1 }),
			wantErr: true,
		},
		{
			name: "upload cap above file cap",
			config: valid(func(c *Config) {
				c.MaxFileSize = 1024
				c.MaxUploadSize = 2048
			}),
			wantErr: true,
		},
		{
			name:    "submission key without URL",
			config:  valid(func(c *Config) { c.SubmissionKey = "secret" }),
			wantErr: true,
		},
		{
			name: "submission key with URL",
			config: valid(func(c *Config) {
				c.SubmissionURL = "https://api.example.com"
				c.SubmissionKey = "secret"
			}),
			wantErr: false,
		},
		{
			name:    "invalid log level",
			config:  valid(func(c *Config) { c.LogLevel = "verbose" }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "0.0.0.0"
	cfg.Port = 9090

	if cfg.Address() != "0.0.0.0:9090" {
		t.Errorf("Address() = %q, want 0.0.0.0:9090", cfg.Address())
	}

	if cfg.IsDebug() {
		t.Error("IsDebug should be false at info level")
	}
	cfg.LogLevel = "debug"
	if !cfg.IsDebug() {
		t.Error("IsDebug should be true at debug level")
	}

	if !cfg.IsStdioMode() || cfg.IsServerMode() {
		t.Error("default config should be stdio mode")
	}
	cfg.Mode = ModeServer
	if cfg.IsStdioMode() || !cfg.IsServerMode() {
		t.Error("expected server mode")
	}

	cfg.SubmissionURL = "https://api.example.com"
	if !cfg.RemoteEnabled() {
		t.Error("expected remote signing enabled with a URL set")
	}
}
