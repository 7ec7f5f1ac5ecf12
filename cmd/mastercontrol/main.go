// Master Control - device registration and configuration backend.
//
// Devices register themselves, push log entries, and pull their
// configuration over a small JSON HTTP API. Operators replace a device's
// configuration and read back what devices have reported. MQTT and
// InfluxDB are optional side channels for config pushes, log ingest and
// activity telemetry.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/mastercontrol/migrations"

	"github.com/nerrad567/mastercontrol/internal/api"
	"github.com/nerrad567/mastercontrol/internal/device"
	"github.com/nerrad567/mastercontrol/internal/deviceconfig"
	"github.com/nerrad567/mastercontrol/internal/devicelog"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/config"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/database"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/influxdb"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/logging"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/mqtt"
	"github.com/nerrad567/mastercontrol/internal/ingest"
	"github.com/nerrad567/mastercontrol/internal/recordstore"
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

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on a clean shutdown.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Master Control",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)

	// Storage
	records, db, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := records.Close(); closeErr != nil {
			log.Error("error closing record store", "error", closeErr)
		}
		if db != nil {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}
	}()
	records.SetLogger(log)

	devices := device.NewIndex(records)
	devices.SetLogger(log)
	configs := deviceconfig.NewStore(records)
	logs := devicelog.NewStore(records)
	log.Info("record store ready",
		"backend", records.BackendName(),
		"devices", devices.Count(ctx),
	)

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
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
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
			"topic_prefix", cfg.MQTT.TopicPrefix,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	deps := api.Deps{
		Config:         cfg.API,
		WS:             cfg.WebSocket,
		Logger:         log,
		Devices:        devices,
		Configs:        configs,
		Logs:           logs,
		StorageBackend: records.BackendName(),
		DB:             db,
		Version:        version,
	}
	// Interfaces are only set for live clients; a nil *Client stored in an
	// interface would not compare equal to nil.
	if mqttClient != nil {
		deps.Publisher = mqttClient
	}
	if influxClient != nil {
		deps.Activity = influxClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if mqttClient != nil {
		ing := ingest.New(mqttClient, logs)
		ing.SetLogger(log)
		ing.SetOnAppend(server.LogAppended)
		if err := ing.Start(ctx); err != nil {
			return fmt.Errorf("starting log ingest: %w", err)
		}
	}

	log.Info("Master Control Backend running", "port", cfg.API.Port, "addr", server.Addr().String())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("Master Control stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MASTERCONTROL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MASTERCONTROL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openStorage builds the record store for the configured backend. The
// returned database is non-nil only for the sqlite backend and is owned by
// the caller.
func openStorage(ctx context.Context, cfg *config.Config, log *logging.Logger) (*recordstore.Store, *database.DB, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendFile:
		backend, err := recordstore.NewFileBackend(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("preparing data directory: %w", err)
		}
		log.Info("file storage ready", "data_dir", backend.Root())
		return recordstore.New(backend), nil, nil

	case config.StorageBackendSQLite:
		db, err := database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // Already returning the migration error
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		log.Info("database connected", "path", cfg.Database.Path)
		return recordstore.New(recordstore.NewSQLiteBackend(db.DB)), db, nil

	case config.StorageBackendMemory:
		log.Warn("memory storage selected; data is lost on restart")
		return recordstore.New(recordstore.NewMemoryBackend()), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// healthCheck verifies the infrastructure that was brought up. Any of the
// arguments may be nil when that component is not in use.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	var errs []error
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("influxdb: %w", err))
		}
	}
	return errors.Join(errs...)
}
