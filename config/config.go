package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultARKURL      = "https://ark.cn-beijing.volces.com/api/v3/responses"
	DefaultTimeout     = 30 * time.Second
	ServerlessTimeout  = 9 * time.Second
	DefaultMaxUpload   = 10 << 20
	DefaultCompressAt  = 1 << 20
	DefaultAnnotateMax = 1280
	DefaultMaxPixels   = 50_000_000
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	ARK     ARKConfig     `yaml:"ark"`
	Upload  UploadConfig  `yaml:"upload"`
	Logging LoggingConfig `yaml:"logging"`

	// arkTimeoutSet records an ark.timeout given in the config file.
	arkTimeoutSet bool
}

type ServerConfig struct {
	Port      string `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// ARKConfig addresses the hosted vision model.
type ARKConfig struct {
	APIKey     string        `yaml:"api_key"`
	EndpointID string        `yaml:"endpoint_id"`
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type UploadConfig struct {
	MaxBytes        int64 `yaml:"max_bytes"`
	CompressAbove   int64 `yaml:"compress_above"`
	AnnotateMaxSide int   `yaml:"annotate_max_side"`
	// MaxPixels bounds width*height of any image that gets decoded.
	MaxPixels int64 `yaml:"max_pixels"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		ARK: ARKConfig{
			URL:     DefaultARKURL,
			Timeout: DefaultTimeout,
		},
		Upload: UploadConfig{
			MaxBytes:        DefaultMaxUpload,
			CompressAbove:   DefaultCompressAt,
			AnnotateMaxSide: DefaultAnnotateMax,
			MaxPixels:       DefaultMaxPixels,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file in the working directory, and the process environment,
// in that order of increasing precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		var explicit struct {
			ARK struct {
				Timeout *time.Duration `yaml:"timeout"`
			} `yaml:"ark"`
		}
		if err := yaml.Unmarshal(data, &explicit); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg.arkTimeoutSet = explicit.ARK.Timeout != nil
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("ARK_API_KEY"); v != "" {
		c.ARK.APIKey = v
	}
	if v := os.Getenv("ARK_ENDPOINT_ID"); v != "" {
		c.ARK.EndpointID = v
	}
	if v := os.Getenv("ARK_API_URL"); v != "" {
		c.ARK.URL = v
	}
	// Serverless functions are cut off at 10s, leave a second for the reply.
	if os.Getenv("VERCEL") == "1" && !c.arkTimeoutSet {
		c.ARK.Timeout = ServerlessTimeout
	}
	if v := os.Getenv("ARK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ARK_TIMEOUT: %w", err)
		}
		c.ARK.Timeout = d
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.Upload.MaxBytes = n
	}
	if v := os.Getenv("MAX_PIXELS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_PIXELS: %w", err)
		}
		c.Upload.MaxPixels = n
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate reports missing settings needed to reach the model.
func (c *Config) Validate() error {
	var errs []error
	if c.ARK.APIKey == "" {
		errs = append(errs, errors.New("ARK_API_KEY is not set"))
	}
	if c.ARK.EndpointID == "" {
		errs = append(errs, errors.New("ARK_ENDPOINT_ID is not set"))
	}
	if c.ARK.URL == "" {
		errs = append(errs, errors.New("ARK_API_URL is not set"))
	}
	if c.ARK.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("ark timeout must be positive, got %s", c.ARK.Timeout))
	}
	return errors.Join(errs...)
}
