package config

import (
	"encoding"
	"encoding/json"
	"os"
	"time"
)

const (
	DefaultRequestTimeout      = 30 * time.Second
	DefaultCreateConcurrency   = 1
	DefaultDrainQueue          = true
	DefaultQueueReserveTimeout = time.Second
	DefaultQueueIdleRounds     = 3
	DefaultCompensationRetries = 3
	DefaultCompensationBackoff = 200 * time.Millisecond
)

// Duration accepts either a Go duration string ("1.5s") or a number of
// seconds in every supported config format.
type Duration struct {
	time.Duration
}

var _ encoding.TextUnmarshaler = &Duration{}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var secs float64
	if err := json.Unmarshal(data, &secs); err == nil {
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var secs float64
	if err := unmarshal(&secs); err == nil {
		d.Duration = time.Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

type Sharding struct {
	Namespace string `json:"namespace" toml:"namespace" yaml:"namespace"`
	ProxyURL  string `json:"proxy_url" toml:"proxy_url" yaml:"proxy_url"`

	ProxyTLS *TLSConfig `json:"proxy_tls,omitempty" toml:"proxy_tls,omitempty" yaml:"proxy_tls,omitempty"`

	LogLevel  string `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFile   string `json:"log_file" toml:"log_file" yaml:"log_file"`
	PrettyLog bool   `json:"pretty_log" toml:"pretty_log" yaml:"pretty_log"`

	RequestTimeout    Duration `json:"request_timeout" toml:"request_timeout" yaml:"request_timeout"`
	CreateConcurrency int      `json:"create_concurrency" toml:"create_concurrency" yaml:"create_concurrency"`

	// DrainQueue defaults to true, see Draining.
	DrainQueue          *bool    `json:"drain_queue" toml:"drain_queue" yaml:"drain_queue"`
	QueueReserveTimeout Duration `json:"queue_reserve_timeout" toml:"queue_reserve_timeout" yaml:"queue_reserve_timeout"`
	QueueIdleRounds     int      `json:"queue_idle_rounds" toml:"queue_idle_rounds" yaml:"queue_idle_rounds"`

	CompensationRetries uint64   `json:"compensation_retries" toml:"compensation_retries" yaml:"compensation_retries"`
	CompensationBackoff Duration `json:"compensation_backoff" toml:"compensation_backoff" yaml:"compensation_backoff"`
}

var cfgSharding Sharding

// Defaults fills every unset field with its default value.
func (s *Sharding) Defaults() {
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.RequestTimeout.Duration <= 0 {
		s.RequestTimeout.Duration = DefaultRequestTimeout
	}
	if s.CreateConcurrency <= 0 {
		s.CreateConcurrency = DefaultCreateConcurrency
	}
	if s.DrainQueue == nil {
		drain := DefaultDrainQueue
		s.DrainQueue = &drain
	}
	if s.QueueReserveTimeout.Duration <= 0 {
		s.QueueReserveTimeout.Duration = DefaultQueueReserveTimeout
	}
	if s.QueueIdleRounds <= 0 {
		s.QueueIdleRounds = DefaultQueueIdleRounds
	}
	if s.CompensationRetries == 0 {
		s.CompensationRetries = DefaultCompensationRetries
	}
	if s.CompensationBackoff.Duration <= 0 {
		s.CompensationBackoff.Duration = DefaultCompensationBackoff
	}
}

// Draining tells whether the work queue is consumed while the shards are
// replaced.
func (s *Sharding) Draining() bool {
	if s.DrainQueue == nil {
		return DefaultDrainQueue
	}
	return *s.DrainQueue
}

// LoadShardingCfg loads the sharding configuration from the specified file path.
//
// Parameters:
//   - cfgPath (string): The path of the configuration file.
//
// Returns:
//   - string: JSON-formatted config
//   - error: An error if any occurred during the loading process.
func LoadShardingCfg(cfgPath string) (string, error) {
	var scfg Sharding
	file, err := os.Open(cfgPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := initConfig(file, &scfg); err != nil {
		return "", err
	}
	scfg.Defaults()
	cfgSharding = scfg

	configBytes, err := json.MarshalIndent(&cfgSharding, "", "  ")
	if err != nil {
		return "", err
	}

	return string(configBytes), nil
}

// ShardingConfig returns a pointer to the loaded sharding configuration.
func ShardingConfig() *Sharding {
	return &cfgSharding
}
