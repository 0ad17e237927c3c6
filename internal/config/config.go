package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"paramload/internal/param"
	"paramload/internal/runner"
	"paramload/internal/scenario"
)

// EnvPrefix namespaces every environment override, e.g. PARAMLOAD_USERS.
const EnvPrefix = "PARAMLOAD"

type Config struct {
	Env string `mapstructure:"env" validate:"required,oneof=development production"`

	Load   runner.Config `mapstructure:",squash"`
	Target Target        `mapstructure:"target"`
	Worker Worker        `mapstructure:"worker"`

	HistoryPath string `mapstructure:"history" validate:"required"`
}

// Target configures the sample application served by `paramload serve`.
type Target struct {
	Host string `mapstructure:"host" validate:"required,hostname|ip"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	ReadTimeout     time.Duration `mapstructure:"read-timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout" validate:"gte=0"`
}

// Worker configures the connection to an external locust master.
type Worker struct {
	MasterHost string `mapstructure:"master-host" validate:"required,hostname|ip"`
	MasterPort int    `mapstructure:"master-port" validate:"required,gt=0,lte=65535"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("host", "http://localhost:8080")
	v.SetDefault("users", 10)
	v.SetDefault("spawn-rate", 1.0)
	v.SetDefault("run-time", time.Minute)
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("param-length", param.Length)
	v.SetDefault("min-wait", scenario.DefaultMinWait)
	v.SetDefault("max-wait", scenario.DefaultMaxWait)
	v.SetDefault("insecure", false)
	v.SetDefault("out", "")

	v.SetDefault("target.host", "0.0.0.0")
	v.SetDefault("target.port", 8080)
	v.SetDefault("target.read-timeout", 5*time.Second)
	v.SetDefault("target.shutdown-timeout", 10*time.Second)

	v.SetDefault("worker.master-host", "127.0.0.1")
	v.SetDefault("worker.master-port", 5557)

	v.SetDefault("history", defaultHistoryPath())
}

// BindEnv lets PARAMLOAD_<KEY> override any key, with "-" and "." mapped to "_".
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "paramload_history.db"
	}
	return filepath.Join(home, ".paramload", "history.db")
}
