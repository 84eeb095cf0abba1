package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/avstrong/campusnest/internal/logger"
)

const envPrefix = "CAMPUSNEST_"

type Config struct {
	HTTP    HTTPConfig    `koanf:"http"`
	Log     logger.Config `koanf:"log"`
	Auth    AuthConfig    `koanf:"auth"`
	API     APIConfig     `koanf:"api"`
	Sandbox SandboxConfig `koanf:"sandbox"`
	Stress  StressConfig  `koanf:"stress"`
}

type HTTPConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	LivenessEndpoint  string        `koanf:"liveness_endpoint"`
}

type AuthConfig struct {
	Secret   string        `koanf:"secret"`
	TokenTTL time.Duration `koanf:"token_ttl"`
}

// APIConfig describes the remote backend used by the client side tools.
type APIConfig struct {
	BaseURL string        `koanf:"base_url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
	Debug   bool          `koanf:"debug"`
}

type SandboxConfig struct {
	MessCapacity int `koanf:"mess_capacity"`
}

type StressConfig struct {
	Concurrency int           `koanf:"concurrency"`
	Requests    int           `koanf:"requests"`
	Timeout     time.Duration `koanf:"timeout"`
	Plan        string        `koanf:"plan"`
	SampleSize  int           `koanf:"sample_size"`
	SummaryPath string        `koanf:"summary_path"`
}

// Load reads the optional YAML file at path, then applies defaults and
// CAMPUSNEST_* environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	applyDefaults(k)

	if err := applyEnvOverrides(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Path resolves the config file from the flag value or CAMPUSNEST_CONFIG.
// An empty result means "defaults and environment only".
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	return os.Getenv(envPrefix + "CONFIG")
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "http.host", "localhost")
	setDefault(k, "http.port", "8092")
	setDefault(k, "http.read_header_timeout", 20*time.Second)
	setDefault(k, "http.shutdown_timeout", 4*time.Second)
	setDefault(k, "http.liveness_endpoint", "/liveness")

	setDefault(k, "log.level", "info")
	setDefault(k, "log.encoding", "json")
	setDefault(k, "log.max_size_mb", 10)
	setDefault(k, "log.max_backups", 3)

	setDefault(k, "auth.secret", "campusnest-dev-secret")
	setDefault(k, "auth.token_ttl", 24*time.Hour)

	setDefault(k, "api.base_url", "http://localhost:8092")
	setDefault(k, "api.timeout", 15*time.Second)

	setDefault(k, "sandbox.mess_capacity", 5)

	setDefault(k, "stress.concurrency", 20)
	setDefault(k, "stress.requests", 200)
	setDefault(k, "stress.timeout", 15*time.Second)
	setDefault(k, "stress.plan", "monthly")
	setDefault(k, "stress.sample_size", 20)
	setDefault(k, "stress.summary_path", "stress-mess-summary.json")
}

type envBinding struct {
	name string
	key  string
	kind string
}

var envBindings = []envBinding{
	{name: "HTTP_HOST", key: "http.host", kind: "string"},
	{name: "HTTP_PORT", key: "http.port", kind: "string"},
	{name: "LOG_LEVEL", key: "log.level", kind: "string"},
	{name: "LOG_ENCODING", key: "log.encoding", kind: "string"},
	{name: "LOG_FILE", key: "log.file_path", kind: "string"},
	{name: "AUTH_SECRET", key: "auth.secret", kind: "string"},
	{name: "AUTH_TOKEN_TTL", key: "auth.token_ttl", kind: "duration"},
	{name: "API_BASE_URL", key: "api.base_url", kind: "string"},
	{name: "API_TOKEN", key: "api.token", kind: "string"},
	{name: "API_TIMEOUT", key: "api.timeout", kind: "duration"},
	{name: "API_DEBUG", key: "api.debug", kind: "bool"},
	{name: "SANDBOX_MESS_CAPACITY", key: "sandbox.mess_capacity", kind: "int"},
	{name: "STRESS_CONCURRENCY", key: "stress.concurrency", kind: "int"},
	{name: "STRESS_REQUESTS", key: "stress.requests", kind: "int"},
	{name: "STRESS_TIMEOUT", key: "stress.timeout", kind: "duration"},
}

func applyEnvOverrides(k *koanf.Koanf) error {
	for _, b := range envBindings {
		raw, ok := os.LookupEnv(envPrefix + b.name)
		if !ok || raw == "" {
			continue
		}

		var (
			value any
			err   error
		)

		switch b.kind {
		case "int":
			value, err = strconv.Atoi(raw)
		case "bool":
			value, err = strconv.ParseBool(raw)
		case "duration":
			value, err = time.ParseDuration(raw)
		default:
			value = raw
		}

		if err != nil {
			return fmt.Errorf("parse %s%s=%q: %w", envPrefix, b.name, raw, err)
		}

		if err := k.Set(b.key, value); err != nil {
			return fmt.Errorf("set %s: %w", b.key, err)
		}
	}

	return nil
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value any) {
	if !k.Exists(key) {
		_ = k.Set(key, value)
	}
}
