package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/runway/pkg/config"
)

type appConfig struct {
	Addr     string        `env:"HTTP_ADDR" envDefault:":8080"`
	Debug    bool          `env:"APP_DEBUG"`
	Timeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Required string        `env:"SECRET,required"`
}

func TestLoadFrom(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFrom[appConfig](map[string]string{
		"APP_DEBUG": "true",
		"SECRET":    "s3cr3t",
	})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.True(t, cfg.Debug)
	require.Equal(t, 10*time.Second, cfg.Timeout)

	_, err = config.LoadFrom[appConfig](map[string]string{})
	require.ErrorIs(t, err, config.ErrLoad)
}

func TestLoad(t *testing.T) {
	t.Setenv("SECRET", "from-env")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := config.Load[appConfig]()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "from-env", cfg.Required)

	first := config.MustLoad[appConfig]()
	t.Setenv("HTTP_ADDR", ":7070")
	require.Equal(t, first, config.MustLoad[appConfig]())
}
