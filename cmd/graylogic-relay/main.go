// Gray Logic Relay - remotely controlled relay node
//
// This is the main entry point for a Gray Logic relay node. The node:
//   - Polls a cloud endpoint for commands and reports each result
//   - Accepts the same commands over MQTT, NATS and a local REST API
//   - Drives an allow-listed set of GPIO pins, one of them wired to a relay
//   - Restarts or factory-resets itself on command
//
// For the command catalogue, see internal/command.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/agent"
	"github.com/nerrad567/gray-logic-relay/internal/api"
	"github.com/nerrad567/gray-logic-relay/internal/bridges/relay"
	"github.com/nerrad567/gray-logic-relay/internal/command"
	"github.com/nerrad567/gray-logic-relay/internal/gpio"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/natsbus"
	"github.com/nerrad567/gray-logic-relay/internal/request"
	"github.com/nerrad567/gray-logic-relay/internal/settings"
	"github.com/nerrad567/gray-logic-relay/internal/system"
	"github.com/nerrad567/gray-logic-relay/internal/telemetry"
	"github.com/nerrad567/gray-logic-relay/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// errRestart is returned by run when a terminal command asked for a
// fresh process.
var errRestart = errors.New("restart requested")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)
	cancel()

	if errors.Is(err, errRestart) {
		// Only returns on failure
		err = system.Reexec()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, errRestart after a terminal command,
//     or an error describing the failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // Linear wiring of every component
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Relay",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version, cfg.Device.ID)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Settings store
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	store := settings.NewSQLiteStore(db.DB)
	log.Info("settings store ready", "path", cfg.Database.Path)

	// GPIO
	pins := make([]gpio.Pin, 0, len(cfg.GPIO.AllowedPins))
	for _, p := range cfg.GPIO.AllowedPins {
		pins = append(pins, gpio.Pin(p))
	}
	driver, err := gpio.NewDriver(cfg.GPIO.Driver, cfg.GPIO.Chip, pins)
	if err != nil {
		return fmt.Errorf("opening gpio: %w", err)
	}
	defer func() {
		if closeErr := driver.Close(); closeErr != nil {
			log.Error("error closing gpio", "error", closeErr)
		}
	}()
	log.Info("gpio ready", "driver", cfg.GPIO.Driver, "pins", cfg.GPIO.AllowedPins, "relay_pin", cfg.GPIO.RelayPin)

	// Commands
	restarter := system.NewExecRestarter()
	controller := system.NewController(store, restarter, commandDelays(cfg.Commands), log)

	handlers := command.NewHandlers(driver, gpio.NewGuard(cfg.GPIO.AllowedPins), gpio.Pin(cfg.GPIO.RelayPin), log)
	registry, err := command.NewRegistry(command.DefaultCommands(handlers), log)
	if err != nil {
		return fmt.Errorf("building command registry: %w", err)
	}
	executor := command.NewExecutor(registry, controller, log)

	// Telemetry
	builder := telemetry.NewBuilder(telemetry.Identity{
		DeviceID:   cfg.Device.ID,
		APIKey:     cfg.Device.APIKey,
		AppVersion: cfg.Device.AppVersion,
	}, telemetry.NewHostProbe(cfg.Device.NetworkInterface, cfg.Device.DataDir))

	components := map[string]api.HealthChecker{"database": db}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)

		executor.Subscribe(func(r command.Result) {
			influxClient.WriteCommand(influxdb.CommandEvent{
				DeviceID: cfg.Device.ID,
				Source:   r.Source,
				Command:  r.Command,
				Param:    r.Param,
				Result:   r.Result,
				Time:     r.Timestamp,
			})
		})

		recorder := telemetry.NewRecorder(builder, influxClient,
			time.Duration(cfg.InfluxDB.SnapshotInterval)*time.Second, log)
		go recorder.Run(ctx)

		components["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// MQTT (optional)
	transports := make(map[string]relay.TransportCheck)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT, cfg.Device.ID)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		)

		bridge := relay.NewMQTTBridge(relay.MQTTBridgeOptions{
			DeviceID: cfg.Device.ID,
			QoS:      mqttClient.QoS(),
			Client:   mqttClient,
			Executor: executor,
			Logger:   log,
		})
		if startErr := bridge.Start(ctx); startErr != nil {
			return fmt.Errorf("starting MQTT bridge: %w", startErr)
		}
		defer bridge.Stop()

		transports["mqtt"] = mqttClient.IsConnected
		components["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// NATS (optional)
	if cfg.NATS.Enabled {
		natsClient, natsErr := natsbus.Connect(cfg.NATS, cfg.Device.ID, log)
		if natsErr != nil {
			return fmt.Errorf("connecting to NATS: %w", natsErr)
		}
		defer func() {
			log.Info("closing NATS connection")
			if closeErr := natsClient.Close(); closeErr != nil {
				log.Error("error closing NATS", "error", closeErr)
			}
		}()

		bridge := relay.NewNATSBridge(cfg.Device.ID, natsClient, executor, log)
		if startErr := bridge.Start(ctx); startErr != nil {
			return fmt.Errorf("starting NATS bridge: %w", startErr)
		}
		defer bridge.Stop()

		transports["nats"] = natsClient.IsConnected
		components["nats"] = natsClient
		log.Info("NATS bridge started", "subject", natsbus.CommandSubject(cfg.Device.ID))
	} else {
		log.Info("NATS disabled")
	}

	// Health reports go out over MQTT once every transport is known
	if mqttClient != nil {
		health := relay.NewHealthReporter(relay.HealthReporterConfig{
			DeviceID:   cfg.Device.ID,
			Version:    version,
			Interval:   time.Duration(cfg.MQTT.HealthInterval) * time.Second,
			Publisher:  mqttClient,
			Telemetry:  builder,
			Halt:       executor,
			Transports: transports,
		})
		health.SetLogger(log)
		health.Start(ctx)
		defer health.Stop()
	}

	// Local API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:     cfg.API,
			WS:         cfg.WebSocket,
			Logger:     log,
			Executor:   executor,
			Telemetry:  builder,
			Settings:   store,
			Components: components,
			Version:    version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("local API disabled")
	}

	// Cloud agent (optional)
	if cfg.Cloud.Enabled {
		pipeline := request.New(request.NewHTTPClient(cfg.Cloud.Insecure), builder, log)
		cloud, agentErr := agent.New(agent.Config{
			PollURL:   cfg.Cloud.PollURL,
			ReportURL: cfg.Cloud.ReportURL,
			Interval:  cfg.GetPollInterval(),
			Timeout:   cfg.GetRequestTimeout(),
		}, pipeline, executor, log)
		if agentErr != nil {
			return fmt.Errorf("creating cloud agent: %w", agentErr)
		}
		cloud.Start(ctx)
		defer cloud.Stop()
		log.Info("cloud agent started", "poll_url", cfg.Cloud.PollURL, "interval", cfg.GetPollInterval())
	} else {
		log.Info("cloud agent disabled")
	}

	log.Info("initialisation complete, waiting for commands")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
		log.Info("Gray Logic Relay stopped")
		return nil
	case reason := <-restarter.Requested():
		log.Warn("restarting", "reason", reason)
		return fmt.Errorf("%w: %s", errRestart, reason)
	}
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_RELAY_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_RELAY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// commandDelays converts the configured settle times (milliseconds).
func commandDelays(c config.CommandsConfig) system.Delays {
	return system.Delays{
		Reboot:      time.Duration(c.RebootDelay) * time.Millisecond,
		ResetYield:  time.Duration(c.ResetYieldDelay) * time.Millisecond,
		ResetForget: time.Duration(c.ResetForgetWait) * time.Millisecond,
		ResetErase:  time.Duration(c.ResetEraseWait) * time.Millisecond,
	}
}
