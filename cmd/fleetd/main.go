// Package main is the entry point for the fleet daemon.
//
// fleetd holds the device registry and action ledger in memory, serves the
// DeviceManagement operations over gRPC and REST, and fans fleet events out
// to WebSocket clients, MQTT, InfluxDB and the SQLite audit trail.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/fleet-core/internal/api"
	"github.com/nerrad567/fleet-core/internal/audit"
	"github.com/nerrad567/fleet-core/internal/fleet"
	"github.com/nerrad567/fleet-core/internal/infrastructure/config"
	"github.com/nerrad567/fleet-core/internal/infrastructure/database"
	"github.com/nerrad567/fleet-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fleet-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleet-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fleet-core/internal/rpc"
	_ "github.com/nerrad567/fleet-core/migrations"
)

// Build information, set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// configEnv names the environment variable holding the config file path.
const configEnv = "FLEET_CONFIG"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on a clean shutdown after ctx is cancelled.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting fleet daemon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if configPath == "" {
		log.Info("no config file found, using defaults")
	} else {
		log.Info("configuration loaded", "path", configPath)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	svc := fleet.New(fleet.Options{
		ActionDuration:     cfg.Service.ActionDuration,
		PostUpdateFirmware: cfg.Service.PostUpdateFirmware,
		Logger:             log.Component("fleet"),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	// Optional audit trail
	var db *database.DB
	var auditRepo *audit.SQLiteRepository
	if cfg.Database.Enabled {
		var dbErr error
		db, dbErr = database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening database: %w", dbErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database ready", "path", cfg.Database.Path)

		auditRepo = audit.NewSQLiteRepository(db.DB)
		recorder := audit.NewRecorder(auditRepo, log.Component("audit"))
		svc.AddSink(recorder)
		g.Go(func() error {
			recorder.Run(gctx)
			return nil
		})
	} else {
		log.Info("audit database disabled")
	}

	// Optional MQTT event publishing
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
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", cfg.MQTT.Broker.Host,
			"port", cfg.MQTT.Broker.Port,
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		publisher := mqtt.NewEventPublisher(mqttClient, mqttClient.Topics(), mqttClient.QoS(), log.Component("mqtt"))
		svc.AddSink(publisher)
		g.Go(func() error {
			publisher.Run(gctx)
			return nil
		})
	} else {
		log.Info("MQTT disabled")
	}

	// Optional InfluxDB metrics
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
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
		svc.AddSink(influxdb.NewMetricsSink(influxClient))
	} else {
		log.Info("InfluxDB disabled")
	}

	// REST API and WebSocket
	if cfg.API.Enabled {
		deps := api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.Component("api"),
			Service: svc,
			Version: version,
		}
		if mqttClient != nil {
			deps.MQTT = mqttClient
		}
		if db != nil {
			deps.DB = db
			deps.Audit = auditRepo
		}
		apiServer, apiErr := api.New(deps)
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		svc.AddSink(apiServer.Hub())

		if startErr := apiServer.Start(gctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		g.Go(func() error {
			<-gctx.Done()
			return apiServer.Close()
		})
	} else {
		log.Info("REST API disabled")
	}

	// gRPC
	rpcServer := rpc.NewServer(svc, log.Component("rpc"))
	g.Go(func() error {
		return rpcServer.ListenAndServe(gctx, cfg.RPC.Address())
	})

	log.Info("fleet daemon started",
		"rpc", cfg.RPC.Address(),
		"api_enabled", cfg.API.Enabled,
	)

	err = g.Wait()

	// Executors still sleeping are abandoned; their results are never observed.
	if n := svc.InFlight(); n > 0 {
		log.Warn("abandoning in-flight actions", "count", n)
	}
	if err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	log.Info("fleet daemon stopped")
	return nil
}

// loadConfig resolves the config path and loads it.
//
// An explicit FLEET_CONFIG must exist. When it is unset, a missing
// configs/config.yaml falls back to built-in defaults and the returned path
// is empty.
func loadConfig() (*config.Config, string, error) {
	if path := os.Getenv(configEnv); path != "" {
		cfg, err := config.Load(path)
		return cfg, path, err
	}

	cfg, err := config.Load(config.DefaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Load("")
		return cfg, "", err
	}
	return cfg, config.DefaultPath, err
}
