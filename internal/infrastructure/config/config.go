package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic relay node.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	GPIO      GPIOConfig      `yaml:"gpio"`
	Commands  CommandsConfig  `yaml:"commands"`
	Cloud     CloudConfig     `yaml:"cloud"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	NATS      NATSConfig      `yaml:"nats"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig contains the identity values sent with every outbound request.
// They are loaded once at startup and never change while the node runs.
type DeviceConfig struct {
	ID         string `yaml:"id"`
	APIKey     string `yaml:"api_key"`
	AppVersion string `yaml:"app_version"`

	// DataDir is the filesystem the flash figures are reported for.
	DataDir string `yaml:"data_dir"`

	// NetworkInterface is the interface whose MAC and signal strength are reported.
	NetworkInterface string `yaml:"network_interface"`
}

// GPIOConfig selects the pin driver and the controllable pins.
type GPIOConfig struct {
	// Driver is "memory" (simulated pins) or "chip" (Linux GPIO character device).
	Driver string `yaml:"driver"`

	// Chip is the GPIO chip name used by the "chip" driver (e.g. "gpiochip0").
	Chip string `yaml:"chip"`

	// AllowedPins is the allow-list of pins commands may touch.
	AllowedPins []int `yaml:"allowed_pins"`

	// RelayPin is the pin wired to the relay. Must be in AllowedPins.
	RelayPin int `yaml:"relay_pin"`
}

// CommandsConfig contains the settle delays used by terminal commands (milliseconds).
type CommandsConfig struct {
	RebootDelay     int `yaml:"reboot_delay"`
	ResetYieldDelay int `yaml:"reset_yield_delay"`
	ResetForgetWait int `yaml:"reset_forget_wait"`
	ResetEraseWait  int `yaml:"reset_erase_wait"`
}

// CloudConfig contains the cloud poll loop settings.
type CloudConfig struct {
	Enabled      bool   `yaml:"enabled"`
	PollURL      string `yaml:"poll_url"`
	ReportURL    string `yaml:"report_url"`
	PollInterval int    `yaml:"poll_interval"` // seconds
	Timeout      int    `yaml:"timeout"`       // milliseconds
	Insecure     bool   `yaml:"insecure"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`

	// HealthInterval is how often the health/telemetry status is published (seconds).
	HealthInterval int `yaml:"health_interval"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// NATSConfig contains NATS request/reply command transport settings.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Name    string `yaml:"name"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	APIKey   string           `yaml:"api_key"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`

	// SnapshotInterval is how often a telemetry snapshot is recorded (seconds).
	SnapshotInterval int `yaml:"snapshot_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_RELAY_SECTION_KEY
// For example: GRAYLOGIC_RELAY_DEVICE_ID, GRAYLOGIC_RELAY_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with the reference device's defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			AppVersion:       "2",
			DataDir:          "./data",
			NetworkInterface: "wlan0",
		},
		GPIO: GPIOConfig{
			Driver:      "memory",
			Chip:        "gpiochip0",
			AllowedPins: []int{0, 2},
			RelayPin:    0,
		},
		Commands: CommandsConfig{
			RebootDelay:     300,
			ResetYieldDelay: 500,
			ResetForgetWait: 200,
			ResetEraseWait:  300,
		},
		Cloud: CloudConfig{
			PollInterval: 10,
			Timeout:      15000,
		},
		Database: DatabaseConfig{
			Path:        "./data/relay.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-relay",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
			HealthInterval: 30,
		},
		NATS: NATSConfig{
			URL:  "nats://127.0.0.1:4222",
			Name: "graylogic-relay",
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:        100,
			FlushInterval:    10,
			SnapshotInterval: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Secrets should always come from here rather than the config file.
func applyEnvOverrides(cfg *Config) {
	// Device identity
	if v := os.Getenv("GRAYLOGIC_RELAY_DEVICE_ID"); v != "" {
		cfg.Device.ID = v
	}
	if v := os.Getenv("GRAYLOGIC_RELAY_API_KEY"); v != "" {
		cfg.Device.APIKey = v
	}

	// Database
	if v := os.Getenv("GRAYLOGIC_RELAY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Cloud
	if v := os.Getenv("GRAYLOGIC_RELAY_POLL_URL"); v != "" {
		cfg.Cloud.PollURL = v
	}
	if v := os.Getenv("GRAYLOGIC_RELAY_REPORT_URL"); v != "" {
		cfg.Cloud.ReportURL = v
	}

	// MQTT
	if v := os.Getenv("GRAYLOGIC_RELAY_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_RELAY_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_RELAY_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// NATS
	if v := os.Getenv("GRAYLOGIC_RELAY_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}

	// API
	if v := os.Getenv("GRAYLOGIC_RELAY_LOCAL_API_KEY"); v != "" {
		cfg.API.APIKey = v
	}

	// InfluxDB
	if v := os.Getenv("GRAYLOGIC_RELAY_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Device identity
	if c.Device.ID == "" {
		errs = append(errs, "device.id is required (set GRAYLOGIC_RELAY_DEVICE_ID)")
	}
	if c.Device.AppVersion == "" {
		errs = append(errs, "device.app_version is required")
	}

	// GPIO
	switch strings.ToLower(c.GPIO.Driver) {
	case "memory":
	case "chip":
		if c.GPIO.Chip == "" {
			errs = append(errs, "gpio.chip is required for the chip driver")
		}
	default:
		errs = append(errs, "gpio.driver must be memory or chip")
	}
	if len(c.GPIO.AllowedPins) == 0 {
		errs = append(errs, "gpio.allowed_pins must not be empty")
	} else if !containsPin(c.GPIO.AllowedPins, c.GPIO.RelayPin) {
		errs = append(errs, "gpio.relay_pin must be one of gpio.allowed_pins")
	}

	// Cloud
	if c.Cloud.Enabled {
		if c.Cloud.PollURL == "" {
			errs = append(errs, "cloud.poll_url is required when cloud is enabled")
		}
		if c.Cloud.ReportURL == "" {
			errs = append(errs, "cloud.report_url is required when cloud is enabled")
		}
		if c.Cloud.PollInterval < 1 {
			errs = append(errs, "cloud.poll_interval must be at least 1 second")
		}
	}
	if c.Cloud.Timeout < 1 {
		errs = append(errs, "cloud.timeout must be positive")
	}

	// Database
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// NATS
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}

	// API
	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func containsPin(pins []int, pin int) bool {
	for _, p := range pins {
		if p == pin {
			return true
		}
	}
	return false
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetRequestTimeout returns the outbound HTTP request timeout as a Duration.
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.Cloud.Timeout) * time.Millisecond
}

// GetPollInterval returns the cloud poll interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Cloud.PollInterval) * time.Second
}
