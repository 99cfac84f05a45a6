package db

import (
	"testing"
	"time"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := PoolConfig("postgres://u:p@localhost:5432/hospital", PoolOptions{
		MaxConns:          12,
		MinConns:          2,
		HealthCheckPeriod: 15 * time.Second,
		ApplicationName:   "hospital-server",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxConns != 12 || cfg.MinConns != 2 {
		t.Errorf("conns = %d/%d", cfg.MaxConns, cfg.MinConns)
	}
	if cfg.HealthCheckPeriod != 15*time.Second {
		t.Errorf("health check period = %s", cfg.HealthCheckPeriod)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != "hospital-server" {
		t.Errorf("application_name = %q", got)
	}
}

func TestPoolConfig_URLApplicationNameWins(t *testing.T) {
	cfg, err := PoolConfig("postgres://localhost/hospital?application_name=psql-debug",
		PoolOptions{ApplicationName: "hospital-server"})
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != "psql-debug" {
		t.Errorf("application_name = %q", got)
	}
}

func TestPoolConfig_BadURL(t *testing.T) {
	if _, err := PoolConfig("postgres://%zz", PoolOptions{}); err == nil {
		t.Fatal("expected parse error")
	}
}
