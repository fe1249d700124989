package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	BackendSqlite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Config struct {
	ConfigFile string
	LogLevel   zerolog.Level
	LogFile    string

	ListenPort     int    `json:"listen_port"`
	StorageBackend string `json:"storage_backend"`
	DBPath         string `json:"db_path"`
	StateFile      string `json:"state_file"`

	EstimatorPollSeconds int `json:"estimator_poll_seconds"`
	AlertPollSeconds     int `json:"alert_poll_seconds"`
	BackendPollSeconds   int `json:"backend_poll_seconds"`
	RetentionDays        int `json:"retention_days"`

	EmailEndpoint  string `json:"email_endpoint"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	BackendBaseURL string `json:"backend_base_url"`

	EnableDatadog bool     `json:"enable_datadog"`
	DDAgentAddr   string   `json:"dd_agent_addr"`
	DDNamespace   string   `json:"dd_namespace"`
	DDTags        []string `json:"dd_tags"`
}

func Load() Config {
	var cfg Config
	var logLevel string

	flag.StringVar(&cfg.ConfigFile, "config-file", "config.json", "Path to dashboard config file")
	flag.StringVar(&cfg.LogFile, "log-file", "", "Optional log file path (stdout only when empty)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	cfg.LogLevel = parseLogLevel(logLevel)

	file, err := os.Open(cfg.ConfigFile)
	if err != nil {
		panic("Failed to load config file: " + err.Error())
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		panic("Failed to parse config file: " + err.Error())
	}

	cfg.ApplyDefaults()
	cfg.validate()
	return cfg
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *Config) ApplyDefaults() {
	if cfg.ListenPort == 0 {
		cfg.ListenPort = 8080
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendSqlite
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "data/smarthome.db"
	}
	if cfg.StateFile == "" {
		cfg.StateFile = "data/state.json"
	}
	if cfg.EstimatorPollSeconds == 0 {
		cfg.EstimatorPollSeconds = 5
	}
	if cfg.AlertPollSeconds == 0 {
		cfg.AlertPollSeconds = 10
	}
	if cfg.BackendPollSeconds == 0 {
		cfg.BackendPollSeconds = 10
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = 90
	}
	if cfg.DDNamespace == "" {
		cfg.DDNamespace = "smarthome."
	}
}

func (cfg *Config) validate() {
	var problems []string

	switch cfg.StorageBackend {
	case BackendSqlite, BackendFile, BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage_backend must be one of sqlite, file, memory (got %q)", cfg.StorageBackend))
	}

	if cfg.ListenPort < 1 || cfg.ListenPort > 65535 {
		problems = append(problems, fmt.Sprintf("listen_port %d out of range", cfg.ListenPort))
	}

	if cfg.EmailEndpoint != "" && cfg.RecipientEmail == "" {
		problems = append(problems, "recipient_email is required when email_endpoint is set")
	}

	if cfg.EnableDatadog && cfg.DDAgentAddr == "" {
		problems = append(problems, "dd_agent_addr is required when enable_datadog is true")
	}

	if len(problems) > 0 {
		panic("Invalid config:\n - " + strings.Join(problems, "\n - "))
	}
}
