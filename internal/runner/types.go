package runner

import (
	"fmt"
	"net/http"
	"time"
)

type Config struct {
	Host        string        `mapstructure:"host" json:"host" validate:"required,url"`
	Users       int           `mapstructure:"users" json:"users" validate:"gte=1"`
	SpawnRate   float64       `mapstructure:"spawn-rate" json:"spawn_rate" validate:"gte=0"`
	RunTime     time.Duration `mapstructure:"run-time" json:"run_time" validate:"gte=0"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	ParamLength int           `mapstructure:"param-length" json:"param_length" validate:"gte=1"`
	Insecure    bool          `mapstructure:"insecure" json:"insecure,omitempty"`

	// Wait between a user's actions
	MinWait time.Duration `mapstructure:"min-wait" json:"min_wait" validate:"gte=0"`
	MaxWait time.Duration `mapstructure:"max-wait" json:"max_wait" validate:"gte=0,gtefield=MinWait"`

	// Per-request results are only kept when reports are written
	OutPrefix string `mapstructure:"out" json:"out,omitempty"`
}

// Result is one request as seen by a simulated user.
type Result struct {
	TimeStamp time.Time     `json:"timestamp"`
	Latency   time.Duration `json:"latency"`
	Method    string        `json:"method"`
	Name      string        `json:"name"`
	URL       string        `json:"url"`
	Status    int           `json:"status"`
	Success   bool          `json:"success"`
	Bytes     int64         `json:"bytes"`
	UserID    string        `json:"user_id"`
	Error     string        `json:"error,omitempty"`
}

// HTTPError marks a response whose status counts as a failure.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
