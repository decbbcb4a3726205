package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DoyleJ11/territory-backend/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, time.Second, cfg.TickPeriod)
	assert.Equal(t, engine.DefaultRules(), cfg.Rules())
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
}

func TestLoad_EnvFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(path, []byte("TERRITORY_SEATS=4\nTERRITORY_TICK_PERIOD=250ms\n"), 0o644)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv("TERRITORY_SEATS")
		os.Unsetenv("TERRITORY_TICK_PERIOD")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Seats)
	assert.Equal(t, 250*time.Millisecond, cfg.TickPeriod)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("TERRITORY_MIN_TRANSFER", "5")
	t.Setenv("TERRITORY_ALLOWED_ORIGINS", "localhost:*,example.com")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Rules().MinTransfer)
	assert.Equal(t, []string{"localhost:*", "example.com"}, cfg.AllowedOrigins)
}

func TestLoad_RejectsNonPositiveRules(t *testing.T) {
	t.Setenv("TERRITORY_GROWTH_PER_TICK", "0")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("TERRITORY_SEATS", "two")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
