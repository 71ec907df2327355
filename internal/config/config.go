package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vextm/tm-bridge/internal/domain/field"
)

// Config holds every tunable of the bridge process. Poll cadences, failure
// thresholds and timeouts are configuration on purpose: the right values
// depend on the machine running Tournament Manager, so nothing in the engine
// hard-codes them.
type Config struct {
	// ListenAddress is the address the HTTP API binds to.
	ListenAddress string `yaml:"listen_addr"`
	// AgentEndpoint is the base URL of the control surface agent that owns
	// the Tournament Manager UI.
	AgentEndpoint string `yaml:"agent_endpoint"`
	// TMAddress is the host of the Tournament Manager web server used for
	// roster data (teams, matches, rankings).
	TMAddress string `yaml:"tm_addr"`
	// Competition selects the program being run: V5RC or VIQRC.
	Competition string `yaml:"competition"`
	// PollInterval is the cadence for fields with subscribers or a command
	// in flight.
	PollInterval time.Duration `yaml:"poll_interval"`
	// IdlePollInterval is the cadence for fields nobody is observing.
	IdlePollInterval time.Duration `yaml:"idle_poll_interval"`
	// BackoffCeiling caps the exponential delay between failed fetches.
	BackoffCeiling time.Duration `yaml:"backoff_ceiling"`
	// FailureThreshold is the number of consecutive fetch failures after
	// which a field is marked unavailable.
	FailureThreshold int `yaml:"failure_threshold"`
	// ConfirmInterval is the cadence of post-command confirmation polls.
	ConfirmInterval time.Duration `yaml:"confirm_interval"`
	// ConfirmTimeout bounds the total time spent confirming one command.
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
	// SubscriberBuffer is the per-subscription event channel capacity.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
	// Timeout is the duration for individual agent and roster HTTP calls.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for bridge settings.
	DefaultConfigFilename = "tm-bridge-settings.yaml"

	// DefaultPollInterval matches the original bridge's full-refresh cycle.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultIdlePollInterval is the low-resource cadence used when a field
	// has no observers and no pending commands.
	DefaultIdlePollInterval = time.Second

	// DefaultBackoffCeiling caps fetch-failure backoff.
	DefaultBackoffCeiling = 30 * time.Second

	// DefaultFailureThreshold is the consecutive-failure count that flips a
	// field to unavailable.
	DefaultFailureThreshold = 5

	// DefaultConfirmInterval is the cadence of confirmation polls.
	DefaultConfirmInterval = 100 * time.Millisecond

	// DefaultConfirmTimeout bounds confirmation of a single command.
	DefaultConfirmTimeout = 3 * time.Second

	// DefaultSubscriberBuffer is the per-subscription channel capacity.
	DefaultSubscriberBuffer = 64

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errListenAddressRequired is returned when the listen address is missing.
	errListenAddressRequired = errors.New("listen address must be provided")
	// errAgentEndpointRequired is returned when the agent endpoint is missing.
	errAgentEndpointRequired = errors.New("agent endpoint must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills in defaults for the rest.
func Validate(cfg *Config) error {
	if cfg.ListenAddress == "" {
		return errListenAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if cfg.AgentEndpoint == "" {
		return errAgentEndpointRequired
	}

	if _, err := url.ParseRequestURI(cfg.AgentEndpoint); err != nil {
		return fmt.Errorf("invalid agent endpoint: %w", err)
	}

	if cfg.Competition == "" {
		cfg.Competition = string(field.CompetitionV5RC)
	}

	if _, err := field.ParseCompetition(cfg.Competition); err != nil {
		return fmt.Errorf("invalid competition: %w", err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.IdlePollInterval <= 0 {
		cfg.IdlePollInterval = DefaultIdlePollInterval
	}

	if cfg.BackoffCeiling <= 0 {
		cfg.BackoffCeiling = DefaultBackoffCeiling
	}

	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}

	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = DefaultConfirmInterval
	}

	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfirmTimeout
	}

	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultSubscriberBuffer
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
