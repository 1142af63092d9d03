package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort          = 8080
	DefaultHost          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultMaxFileSize   = 50 * 1024 * 1024 // 50MB document cap
	DefaultMaxUploadSize = 5 * 1024 * 1024  // 5MB signature image cap
)

// Config holds all configuration for the PDF signing server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Document configuration
	MaxFileSize   int64 // Maximum PDF file size in bytes
	MaxUploadSize int64 // Maximum signature image upload size in bytes

	// Remote submission configuration (optional; local signing works without it)
	SubmissionURL string
	SubmissionKey string
	MailURL       string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	SignerName string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:          ModeStdio, // Default to stdio mode for MCP compatibility
		Host:          DefaultHost,
		Port:          DefaultPort,
		MaxFileSize:   DefaultMaxFileSize,
		MaxUploadSize: DefaultMaxUploadSize,
		Version:       "1.0.0",
		ServerName:    "mcp-pdf-sign",
		LogLevel:      DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("MCP_PDF_SIGN")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("maxuploadsize", cfg.MaxUploadSize)
	viper.SetDefault("submissionurl", cfg.SubmissionURL)
	viper.SetDefault("submissionkey", cfg.SubmissionKey)
	viper.SetDefault("mailurl", cfg.MailURL)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("signername", cfg.SignerName)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Int64("maxuploadsize", cfg.MaxUploadSize, "Maximum signature image upload size in bytes")
	pflag.String("submissionurl", cfg.SubmissionURL, "Base URL of the remote e-signature submission API")
	pflag.String("submissionkey", cfg.SubmissionKey, "Auth token for the remote submission API")
	pflag.String("mailurl", cfg.MailURL, "URL of the signing-link mail relay (defaults to submission API)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("signername", cfg.SignerName, "Default signer name used to auto-fill name fields")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("maxuploadsize", pflag.Lookup("maxuploadsize"))
	_ = viper.BindPFlag("submissionurl", pflag.Lookup("submissionurl"))
	_ = viper.BindPFlag("submissionkey", pflag.Lookup("submissionkey"))
	_ = viper.BindPFlag("mailurl", pflag.Lookup("mailurl"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("signername", pflag.Lookup("signername"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Sign - A Model Context Protocol server for signing PDF documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         # stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --submissionurl=https://api.example.com # enable remote signing\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --maxfilesize=10485760                  # 10MB document cap\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_MODE           Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_MAXFILESIZE    Maximum document size\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_MAXUPLOADSIZE  Maximum signature image size\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_SUBMISSIONURL  Remote submission API base URL\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_SUBMISSIONKEY  Remote submission API auth token\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_MAILURL        Mail relay URL\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_SIGN_SIGNERNAME     Default signer name\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MaxUploadSize = viper.GetInt64("maxuploadsize")
	cfg.SubmissionURL = viper.GetString("submissionurl")
	cfg.SubmissionKey = viper.GetString("submissionkey")
	cfg.MailURL = viper.GetString("mailurl")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.SignerName = viper.GetString("signername")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate size limits
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.MaxUploadSize <= 0 {
		return errors.New("maximum upload size must be positive")
	}
	if c.MaxUploadSize > c.MaxFileSize {
		return errors.New("maximum upload size cannot exceed maximum file size")
	}

	// A submission key without an endpoint is a misconfiguration
	if c.SubmissionKey != "" && c.SubmissionURL == "" {
		return errors.New("submission key is set but submission URL is empty")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// RemoteEnabled returns true if a remote submission endpoint is configured
func (c *Config) RemoteEnabled() bool {
	return c.SubmissionURL != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, MaxFileSize: %d, MaxUploadSize: %d, SubmissionURL: %s, LogLevel: %s}",
		c.Mode, c.Host, c.Port, c.MaxFileSize, c.MaxUploadSize, c.SubmissionURL, c.LogLevel)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
