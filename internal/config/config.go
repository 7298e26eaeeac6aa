// Package config loads qsim server and CLI configuration from YAML.
//
// Values may reference environment variables as ${VAR_NAME}. Durations use
// time.ParseDuration syntax ("15s", "60m"). Omitted fields keep the values
// from Default.
//
//	server:
//	  http_addr: ":8080"
//	  read_timeout: "15s"
//	simulation:
//	  probability_rule: "real-square"  # real-square, born
//	  max_shots: 8192
//	  circuit_ttl: "60m"
//	qrng:
//	  width: 8
//	  extraction_method: "SHA3-256"
//	  security_parameter: 64
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	models "github.com/jaskrrish/Go-QSim/internal/models/qsim"
	"github.com/jaskrrish/Go-QSim/internal/qsim/crypto"
	"github.com/jaskrrish/Go-QSim/internal/qsim/quantum"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "QSIM_CONFIG"

// Config represents the complete qsim configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	QRNG       QRNGConfig       `yaml:"qrng"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr     string        `yaml:"http_addr"`
	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`
	IdleTimeout  time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	ReadTimeoutRaw  string `yaml:"read_timeout"`
	WriteTimeoutRaw string `yaml:"write_timeout"`
	IdleTimeoutRaw  string `yaml:"idle_timeout"`
}

// SimulationConfig holds circuit registry limits and defaults
type SimulationConfig struct {
	MaxQubits       int           `yaml:"max_qubits"`
	ProbabilityRule string        `yaml:"probability_rule"`
	DefaultShots    int           `yaml:"default_shots"`
	MaxShots        int           `yaml:"max_shots"`
	CircuitTTL      time.Duration `yaml:"-"`
	CleanupInterval time.Duration `yaml:"-"`

	CircuitTTLRaw      string `yaml:"circuit_ttl"`
	CleanupIntervalRaw string `yaml:"cleanup_interval"`
}

// QRNGConfig holds random number generator configuration
type QRNGConfig struct {
	Width            int     `yaml:"width"`
	ExtractionMethod string  `yaml:"extraction_method"`
	BiasThreshold    float64 `yaml:"bias_threshold"`

	// Bits of entropy held back from extracted output
	SecurityParameter int `yaml:"security_parameter"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a valid configuration for local use
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			ReadTimeoutRaw:  "15s",
			WriteTimeoutRaw: "15s",
			IdleTimeoutRaw:  "60s",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
		},
		Simulation: SimulationConfig{
			MaxQubits:          quantum.MaxQubits,
			ProbabilityRule:    quantum.RealSquareRule.String(),
			DefaultShots:       1,
			MaxShots:           8192,
			CircuitTTLRaw:      "60m",
			CleanupIntervalRaw: "5m",
			CircuitTTL:         60 * time.Minute,
			CleanupInterval:    5 * time.Minute,
		},
		QRNG: QRNGConfig{
			Width:            8,
			ExtractionMethod: string(crypto.SHA3_256Method),
			BiasThreshold:    0.05,

			SecurityParameter: crypto.DefaultSecurityParameter,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults, then parses and validates the result
func Parse(data []byte) (*Config, error) {
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Resolve loads path, falling back to $QSIM_CONFIG and then to Default.
// A PORT environment variable overrides server.http_addr.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}

	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.HTTPAddr = ":" + port
	}

	return cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Rule returns the configured probability rule
func (c *Config) Rule() quantum.ProbabilityRule {
	rule, _ := quantum.ParseProbabilityRule(c.Simulation.ProbabilityRule)
	return rule
}

// Validate checks that all configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Simulation.MaxQubits < 1 || c.Simulation.MaxQubits > quantum.MaxQubits {
		return fmt.Errorf("simulation.max_qubits must be between 1 and %d", quantum.MaxQubits)
	}

	if _, ok := quantum.ParseProbabilityRule(c.Simulation.ProbabilityRule); !ok {
		return fmt.Errorf("simulation.probability_rule %q is not one of real-square, born", c.Simulation.ProbabilityRule)
	}

	if c.Simulation.MaxShots < 1 {
		return fmt.Errorf("simulation.max_shots must be positive")
	}

	if c.Simulation.DefaultShots < 1 || c.Simulation.DefaultShots > c.Simulation.MaxShots {
		return fmt.Errorf("simulation.default_shots must be between 1 and max_shots")
	}

	maxTTL := time.Duration(models.MaxTTLMinutes) * time.Minute
	if c.Simulation.CircuitTTL < time.Minute || c.Simulation.CircuitTTL > maxTTL {
		return fmt.Errorf("simulation.circuit_ttl must be between 1m and %s", maxTTL)
	}

	if c.Simulation.CleanupInterval <= 0 {
		return fmt.Errorf("simulation.cleanup_interval must be positive")
	}

	if c.QRNG.Width < 1 || c.QRNG.Width > c.Simulation.MaxQubits {
		return fmt.Errorf("qrng.width must be between 1 and simulation.max_qubits")
	}

	if _, err := crypto.ParseExtractionMethod(c.QRNG.ExtractionMethod); err != nil {
		return fmt.Errorf("qrng.extraction_method: %w", err)
	}

	if c.QRNG.BiasThreshold <= 0 || c.QRNG.BiasThreshold >= 0.5 {
		return fmt.Errorf("qrng.bias_threshold must be in (0, 0.5)")
	}

	if c.QRNG.SecurityParameter < 0 || c.QRNG.SecurityParameter > crypto.MaxSecurityParameter {
		return fmt.Errorf("qrng.security_parameter must be between 0 and %d", crypto.MaxSecurityParameter)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"read_timeout", cfg.Server.ReadTimeoutRaw, &cfg.Server.ReadTimeout},
		{"write_timeout", cfg.Server.WriteTimeoutRaw, &cfg.Server.WriteTimeout},
		{"idle_timeout", cfg.Server.IdleTimeoutRaw, &cfg.Server.IdleTimeout},
		{"circuit_ttl", cfg.Simulation.CircuitTTLRaw, &cfg.Simulation.CircuitTTL},
		{"cleanup_interval", cfg.Simulation.CleanupIntervalRaw, &cfg.Simulation.CleanupInterval},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
