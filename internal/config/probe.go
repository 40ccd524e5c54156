package config

import (
	"fmt"
	"log/slog"
	"time"
)

// Report formats understood by convexprobe.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// ProbeConfig holds the convexprobe settings. Command-line flags override
// these values.
type ProbeConfig struct {
	LogLevel       slog.Level    `env:"CONVEX_LOG_LEVEL" envDefault:"INFO"`
	EvalTimeout    time.Duration `env:"CONVEX_EVAL_TIMEOUT" envDefault:"5s"`
	Format         string        `env:"CONVEX_FORMAT" envDefault:"json"`
	MeshDir        string        `env:"CONVEX_MESH_DIR"`
	Reference      bool          `env:"CONVEX_REFERENCE" envDefault:"false"`
	ReferenceCells int           `env:"CONVEX_REFERENCE_CELLS" envDefault:"200"`
}

// LoadProbeConfig parses and validates the environment.
func LoadProbeConfig() (ProbeConfig, error) {
	var cfg ProbeConfig
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings convexprobe cannot run with.
func (c ProbeConfig) Validate() error {
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("config: eval timeout must be positive, got %s", c.EvalTimeout)
	}
	if c.Format != FormatJSON && c.Format != FormatMsgpack {
		return fmt.Errorf("config: unknown report format %q", c.Format)
	}
	if c.ReferenceCells < 8 {
		return fmt.Errorf("config: reference cells must be at least 8, got %d", c.ReferenceCells)
	}
	return nil
}
