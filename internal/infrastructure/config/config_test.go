package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every variable applyEnvOverrides reads so the host
// environment cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT",
		"MASTERCONTROL_API_HOST",
		"MASTERCONTROL_API_PORT",
		"MASTERCONTROL_STORAGE_BACKEND",
		"MASTERCONTROL_DATA_DIR",
		"MASTERCONTROL_DATABASE_PATH",
		"MASTERCONTROL_MQTT_HOST",
		"MASTERCONTROL_MQTT_USERNAME",
		"MASTERCONTROL_MQTT_PASSWORD",
		"MASTERCONTROL_INFLUXDB_TOKEN",
		"MASTERCONTROL_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	clearEnv(t)

	content := `
api:
  host: "127.0.0.1"
  port: 8081
storage:
  backend: "sqlite"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
  topic_prefix: "mc"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != 8081 {
		t.Errorf("API.Port = %d, want 8081", cfg.API.Port)
	}
	if cfg.Storage.Backend != StorageBackendSQLite {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, StorageBackendSQLite)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.MQTT.TopicPrefix != "mc" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "mc")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Port != 3000 {
		t.Errorf("API.Port = %d, want 3000", cfg.API.Port)
	}
	if cfg.Storage.Backend != StorageBackendFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, StorageBackendFile)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	clearEnv(t)

	content := `
storage:
  backend: "postgres"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for unknown backend, got nil")
	}
}

func TestLoad_PortFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "4100")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Port != 4100 {
		t.Errorf("API.Port = %d, want 4100", cfg.API.Port)
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() expected error for non-numeric PORT, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid file config",
			config: &Config{
				API:     APIConfig{Port: 3000},
				Storage: StorageConfig{Backend: StorageBackendFile, DataDir: "./data"},
			},
			wantErr: false,
		},
		{
			name: "valid memory config",
			config: &Config{
				API:     APIConfig{Port: 3000},
				Storage: StorageConfig{Backend: StorageBackendMemory},
			},
			wantErr: false,
		},
		{
			name: "file backend without data dir",
			config: &Config{
				API:     APIConfig{Port: 3000},
				Storage: StorageConfig{Backend: StorageBackendFile},
			},
			wantErr: true,
		},
		{
			name: "sqlite backend without database path",
			config: &Config{
				API:     APIConfig{Port: 3000},
				Storage: StorageConfig{Backend: StorageBackendSQLite},
			},
			wantErr: true,
		},
		{
			name: "invalid QoS",
			config: &Config{
				API:     APIConfig{Port: 3000},
				Storage: StorageConfig{Backend: StorageBackendMemory},
				MQTT:    MQTTConfig{QoS: 3},
			},
			wantErr: true,
		},
		{
			name: "mqtt enabled without prefix",
			config: &Config{
				API:     APIConfig{Port: 3000},
				Storage: StorageConfig{Backend: StorageBackendMemory},
				MQTT:    MQTTConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without url",
			config: &Config{
				API:      APIConfig{Port: 3000},
				Storage:  StorageConfig{Backend: StorageBackendMemory},
				InfluxDB: InfluxDBConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			config: &Config{
				API:     APIConfig{Port: 0},
				Storage: StorageConfig{Backend: StorageBackendMemory},
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			config: &Config{
				API:     APIConfig{Port: 70000},
				Storage: StorageConfig{Backend: StorageBackendMemory},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIConfig_Timeouts(t *testing.T) {
	cfg := APIConfig{
		Timeouts: APITimeoutConfig{
			Read:  30,
			Write: 45,
			Idle:  60,
		},
	}

	if got := cfg.ReadTimeout().Seconds(); got != 30 {
		t.Errorf("ReadTimeout() = %v, want 30", got)
	}
	if got := cfg.WriteTimeout().Seconds(); got != 45 {
		t.Errorf("WriteTimeout() = %v, want 45", got)
	}
	if got := cfg.IdleTimeout().Seconds(); got != 60 {
		t.Errorf("IdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	cfg := defaultConfig()

	t.Setenv("MASTERCONTROL_API_PORT", "5000")
	t.Setenv("PORT", "6000")
	t.Setenv("MASTERCONTROL_STORAGE_BACKEND", "sqlite")
	t.Setenv("MASTERCONTROL_DATABASE_PATH", "/custom/path.db")
	t.Setenv("MASTERCONTROL_MQTT_HOST", "mqtt.example.com")
	t.Setenv("MASTERCONTROL_MQTT_USERNAME", "testuser")
	t.Setenv("MASTERCONTROL_MQTT_PASSWORD", "testpass")
	t.Setenv("MASTERCONTROL_INFLUXDB_TOKEN", "secret-token")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	// The namespaced variable wins over bare PORT.
	if cfg.API.Port != 5000 {
		t.Errorf("API.Port = %d, want 5000", cfg.API.Port)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, "sqlite")
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.API.Port != 3000 {
		t.Errorf("defaultConfig API.Port = %d, want 3000", cfg.API.Port)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("defaultConfig should have non-empty Storage.DataDir")
	}
	if len(cfg.API.CORS.AllowedOrigins) != 1 || cfg.API.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("defaultConfig CORS origins = %v, want [*]", cfg.API.CORS.AllowedOrigins)
	}
	if cfg.MQTT.Enabled {
		t.Error("defaultConfig should not enable MQTT")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate: %v", err)
	}
}
