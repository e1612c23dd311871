// Package config provides Viper-based configuration loading for the trainer server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server modes.
const (
	// ModeStandalone keeps all roster state in memory for the session only.
	ModeStandalone = "standalone"
	// ModePersistent snapshots rosters to PostgreSQL when a session closes.
	ModePersistent = "persistent"
)

// Landing zones for newly confirmed captures.
const (
	LandingBox  = "box"
	LandingTeam = "team"
)

// Authenticator kinds selectable for the session gate.
const (
	AuthenticatorPasscode = "passcode"
	AuthenticatorPasskey  = "passkey"
	AuthenticatorStatic   = "static"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Mode is the persistence mode: "standalone" or "persistent".
	Mode string `mapstructure:"mode"`
	// Name identifies this server instance in logs.
	Name string `mapstructure:"name"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// TrainerServerConfig holds the gRPC listener settings for the presentation layer.
type TrainerServerConfig struct {
	// GRPCHost is the bind address for the trainer gRPC service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the trainer gRPC service.
	GRPCPort int `mapstructure:"grpc_port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (g TrainerServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", g.GRPCHost, g.GRPCPort)
}

// WebConfig holds the HTTP listener settings for the passkey ceremony endpoints.
type WebConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the "host:port" HTTP address.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// CaptureConfig holds capture flow settings.
type CaptureConfig struct {
	// Landing is where confirmed captures go when the caller names no
	// destination: "box" (the selected box) or "team".
	Landing string `mapstructure:"landing"`
	// CatalogDir is the directory of species YAML files.
	CatalogDir string `mapstructure:"catalog_dir"`
	// ScriptDir holds Lua capture hooks; empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit caps Lua opcodes per hook call; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// RosterConfig holds the initial storage box layout.
type RosterConfig struct {
	BoxNames []string `mapstructure:"box_names"`
	// StarterID is the catalog id placed on a new trainer's team.
	StarterID int `mapstructure:"starter_id"`
}

// GateConfig holds session gate settings.
type GateConfig struct {
	// Authenticator selects the collaborator: "passcode", "passkey", or "static".
	Authenticator string `mapstructure:"authenticator"`
	// RelockAfter closes an open gate after this long; 0 never relocks.
	RelockAfter time.Duration `mapstructure:"relock_after"`
}

// PasskeyConfig holds WebAuthn relying party settings.
type PasskeyConfig struct {
	RPID          string   `mapstructure:"rp_id"`
	RPDisplayName string   `mapstructure:"rp_display_name"`
	RPOrigins     []string `mapstructure:"rp_origins"`
}

// PasscodeConfig holds device passcode fallback settings.
type PasscodeConfig struct {
	// MaxAttempts is the number of consecutive failures before the
	// passcode authenticator refuses further attempts.
	MaxAttempts int `mapstructure:"max_attempts"`
}

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	TrainerServer TrainerServerConfig `mapstructure:"trainerserver"`
	Web           WebConfig           `mapstructure:"web"`
	Capture       CaptureConfig       `mapstructure:"capture"`
	Roster        RosterConfig        `mapstructure:"roster"`
	Gate          GateConfig          `mapstructure:"gate"`
	Passkey       PasskeyConfig       `mapstructure:"passkey"`
	Passcode      PasscodeConfig      `mapstructure:"passcode"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Server.Mode == ModePersistent {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTrainerServer(c.TrainerServer); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWeb(c.Web); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCapture(c.Capture); err != nil {
		errs = append(errs, err.Error())
	}
	if len(c.Roster.BoxNames) == 0 {
		errs = append(errs, "roster.box_names must name at least one box")
	}
	if c.Roster.StarterID < 1 {
		errs = append(errs, fmt.Sprintf("roster.starter_id must be positive, got %d", c.Roster.StarterID))
	}
	if err := validateGate(c.Gate, c.Passkey, c.Passcode); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Mode != ModeStandalone && s.Mode != ModePersistent {
		return fmt.Errorf("server.mode must be one of [standalone, persistent], got %q", s.Mode)
	}
	if s.Name == "" {
		return errors.New("server.name must not be empty")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateTrainerServer(g TrainerServerConfig) error {
	var errs []string
	if g.GRPCHost == "" {
		errs = append(errs, "trainerserver.grpc_host must not be empty")
	}
	if g.GRPCPort < 1 || g.GRPCPort > 65535 {
		errs = append(errs, fmt.Sprintf("trainerserver.grpc_port must be 1-65535, got %d", g.GRPCPort))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWeb(w WebConfig) error {
	if w.Port < 1 || w.Port > 65535 {
		return fmt.Errorf("web.port must be 1-65535, got %d", w.Port)
	}
	return nil
}

func validateCapture(c CaptureConfig) error {
	var errs []string
	if c.Landing != LandingBox && c.Landing != LandingTeam {
		errs = append(errs, fmt.Sprintf("capture.landing must be one of [box, team], got %q", c.Landing))
	}
	if c.CatalogDir == "" {
		errs = append(errs, "capture.catalog_dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("capture.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGate(g GateConfig, pk PasskeyConfig, pc PasscodeConfig) error {
	var errs []string
	switch g.Authenticator {
	case AuthenticatorPasscode:
		if pc.MaxAttempts < 1 {
			errs = append(errs, fmt.Sprintf("passcode.max_attempts must be >= 1, got %d", pc.MaxAttempts))
		}
	case AuthenticatorPasskey:
		if pk.RPID == "" {
			errs = append(errs, "passkey.rp_id must not be empty")
		}
		if pk.RPDisplayName == "" {
			errs = append(errs, "passkey.rp_display_name must not be empty")
		}
		if len(pk.RPOrigins) == 0 {
			errs = append(errs, "passkey.rp_origins must list at least one origin")
		}
	case AuthenticatorStatic:
	default:
		errs = append(errs, fmt.Sprintf("gate.authenticator must be one of [passcode, passkey, static], got %q", g.Authenticator))
	}
	if g.RelockAfter < 0 {
		errs = append(errs, "gate.relock_after must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with POKE_ prefix
	v.SetEnvPrefix("POKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultBoxNames is the storage layout a new trainer starts with.
var DefaultBoxNames = []string{"Box 1", "Box 2", "Box 3"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", ModeStandalone)
	v.SetDefault("server.name", "poketrainer")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "poketrainer")
	v.SetDefault("database.password", "poketrainer")
	v.SetDefault("database.name", "poketrainer")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("trainerserver.grpc_host", "127.0.0.1")
	v.SetDefault("trainerserver.grpc_port", 50061)

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 8443)

	v.SetDefault("capture.landing", LandingBox)
	v.SetDefault("capture.catalog_dir", "content/catalog")
	v.SetDefault("capture.script_dir", "")
	v.SetDefault("capture.script_instruction_limit", 0)

	v.SetDefault("roster.box_names", DefaultBoxNames)
	v.SetDefault("roster.starter_id", 25)

	v.SetDefault("gate.authenticator", AuthenticatorPasscode)
	v.SetDefault("gate.relock_after", "0s")

	v.SetDefault("passkey.rp_id", "localhost")
	v.SetDefault("passkey.rp_display_name", "PokeTrainerApp")
	v.SetDefault("passkey.rp_origins", []string{"https://localhost:8443"})

	v.SetDefault("passcode.max_attempts", 5)
}
