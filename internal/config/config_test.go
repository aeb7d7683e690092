package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, expected %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Scheduler.NotifyCron != "0 8 * * *" {
		t.Errorf("Scheduler.NotifyCron = %q, expected %q", cfg.Scheduler.NotifyCron, "0 8 * * *")
	}
	if GlobalConfig != cfg {
		t.Error("GlobalConfig should point at the loaded config")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: \"9090\"\nscheduler:\n  notify_cron: \"30 6 * * *\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "9090")
	}
	if cfg.Scheduler.NotifyCron != "30 6 * * *" {
		t.Errorf("Scheduler.NotifyCron = %q", cfg.Scheduler.NotifyCron)
	}
	if cfg.JWT.ExpireHour != 24 {
		t.Errorf("JWT.ExpireHour = %d, expected default 24", cfg.JWT.ExpireHour)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=db user=upnext")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("JWT_EXPIRE_HOUR", "12")
	t.Setenv("NOTIFY_CRON", "0 9 * * *")
	t.Setenv("TIMEZONE", "Asia/Dhaka")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	if cfg.Server.Port != "7000" {
		t.Errorf("Server.Port = %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" || cfg.Database.DSN != "host=db user=upnext" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.JWT.Secret != "env-secret" || cfg.JWT.ExpireHour != 12 {
		t.Errorf("JWT = %+v", cfg.JWT)
	}
	if cfg.Scheduler.NotifyCron != "0 9 * * *" || cfg.Scheduler.Timezone != "Asia/Dhaka" {
		t.Errorf("Scheduler = %+v", cfg.Scheduler)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
	}{
		{"host only", "redis://localhost:6379", "localhost:6379", "", 0},
		{"with password and db", "redis://:s3cret@cache:6380/2", "cache:6380", "s3cret", 2},
		{"user and password", "redis://user:pw@10.0.0.5:6379/1", "10.0.0.5:6379", "pw", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.parseRedisURL(tt.url)
			if cfg.Redis.Addr != tt.addr {
				t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, tt.addr)
			}
			if cfg.Redis.Password != tt.password {
				t.Errorf("Password = %q, expected %q", cfg.Redis.Password, tt.password)
			}
			if cfg.Redis.DB != tt.db {
				t.Errorf("DB = %d, expected %d", cfg.Redis.DB, tt.db)
			}
		})
	}
}

func TestSchedulerLocation(t *testing.T) {
	sc := SchedulerConfig{Timezone: "Not/AZone"}
	if sc.Location().String() != "UTC" {
		t.Errorf("invalid timezone should fall back to UTC, got %s", sc.Location())
	}

	sc.Timezone = ""
	if sc.Location().String() != "UTC" {
		t.Errorf("empty timezone should be UTC, got %s", sc.Location())
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Server.Port = "9191"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.Port != "9191" {
		t.Errorf("Server.Port = %q after round trip", loaded.Server.Port)
	}
}
