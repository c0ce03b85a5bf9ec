package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_PortsPerService(t *testing.T) {
	tests := []struct {
		svc     string
		http    string
		metrics string
	}{
		{"budget-service", "8082", "9098"},
		{"slip-service", "8083", "9099"},
		{"api-gateway", "8000", "9090"},
		{"odds-service", "8080", "9095"},
		{"", "8080", "9095"},
	}

	for _, tt := range tests {
		t.Run(tt.svc, func(t *testing.T) {
			t.Setenv("SERVICE_NAME", tt.svc)
			cfg := Load()
			assert.Equal(t, tt.http, cfg.HTTPPort)
			assert.Equal(t, tt.metrics, cfg.MetricsPort)
		})
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WEEKLY_BUDGET_CENTS", "25000")
	t.Setenv("ODDS_CACHE_TTL", "5s")
	t.Setenv("SLIP_STORE", "memory")

	cfg := Load()
	assert.Equal(t, int64(25000), cfg.WeeklyBudgetCents)
	assert.Equal(t, 5*time.Second, cfg.OddsCacheTTL)
	assert.Equal(t, "memory", cfg.SlipStore)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("WEEKLY_BUDGET_CENTS", "lots")
	t.Setenv("ODDS_CACHE_TTL", "soon")

	cfg := Load()
	assert.Equal(t, int64(10000), cfg.WeeklyBudgetCents)
	assert.Equal(t, 30*time.Second, cfg.OddsCacheTTL)
}
