package runway

import (
	"time"

	"github.com/dmitrymomot/runway/pkg/config"
)

// Config is the application-level configuration read from the environment.
type Config struct {
	Runtime         RuntimeType   `env:"APP_RUNTIME" envDefault:"http"`
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxBufferedBody int           `env:"MAX_BUFFERED_BODY" envDefault:"8388608"`
	Debug           bool          `env:"APP_DEBUG"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	return config.Load[Config]()
}

// Options returns the app options cfg implies.
func (cfg Config) Options() []Option {
	return []Option{
		WithRuntime(cfg.Runtime),
		WithDeveloperMode(cfg.Debug),
		WithMaxBufferedBody(cfg.MaxBufferedBody),
	}
}

// RunOptions returns the run options cfg implies.
func (cfg Config) RunOptions() []RunOption {
	return []RunOption{ShutdownTimeout(cfg.ShutdownTimeout)}
}
