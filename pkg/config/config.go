package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drone/envsubst"
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"sigs.k8s.io/yaml"

	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

const FileName = ".anchorctl"

const (
	DefaultStorage    = ".anchors"
	DefaultServer     = "localhost:8080"
	DefaultLogLevel   = "info"
	DefaultCapture    = "once"
	DefaultPollPeriod = 10 * time.Millisecond
)

// Config is the configuration of the anchor tooling. Values
// in config files may refer to environment variables with ${NAME}.
type Config struct {
	Storage    *string `json:"storage,omitempty"`
	Scene      *string `json:"scene,omitempty"`
	Capture    *string `json:"capture,omitempty"`
	Latency    *string `json:"latency,omitempty"`
	PollPeriod *string `json:"pollPeriod,omitempty"`
	Server     *string `json:"server,omitempty"`
	LogLevel   *string `json:"logLevel,omitempty"`
}

// GetConfig merges the config files found in the home directory,
// the user config directory and the current working directory.
// Environment variables override file settings.
func GetConfig(fss ...vfs.FileSystem) *Config {
	fs := utils.OptionalDefaulted[vfs.FileSystem](osfs.OsFs, fss...)

	var cfg Config

	dir, err := os.UserHomeDir()
	if err == nil {
		MergeConfig(&cfg, ReadConfig(fs, filepath.Join(dir, FileName)))
	}
	dir, err = os.UserConfigDir()
	if err == nil {
		MergeConfig(&cfg, ReadConfig(fs, filepath.Join(dir, FileName)))
	}
	MergeConfig(&cfg, ReadConfig(fs, FileName))

	MergeConfig(&cfg, FromEnv())
	cfg.Default()
	return &cfg
}

// FromEnv provides the settings given by environment variables.
func FromEnv() *Config {
	var cfg Config
	env := func(name string, f **string) {
		if v := os.Getenv(name); v != "" {
			*f = utils.Pointer(v)
		}
	}
	env("ANCHORS_STORAGE", &cfg.Storage)
	env("ANCHORS_SCENE", &cfg.Scene)
	env("ANCHORS_CAPTURE", &cfg.Capture)
	env("ANCHORS_LATENCY", &cfg.Latency)
	env("ANCHORS_POLL_PERIOD", &cfg.PollPeriod)
	env("ANCHORS_SERVER", &cfg.Server)
	env("ANCHORS_LOG_LEVEL", &cfg.LogLevel)
	return &cfg
}

func (c *Config) Default() {
	if c.Storage == nil || *c.Storage == "" {
		c.Storage = utils.Pointer(DefaultStorage)
	}
	if c.Server == nil || *c.Server == "" {
		c.Server = utils.Pointer(DefaultServer)
	}
	if c.LogLevel == nil || *c.LogLevel == "" {
		c.LogLevel = utils.Pointer(DefaultLogLevel)
	}
	if c.Capture == nil || *c.Capture == "" {
		c.Capture = utils.Pointer(DefaultCapture)
	}
}

// ReadConfig reads a config file. It returns nil, if the file
// does not exist or is invalid.
func ReadConfig(fs vfs.FileSystem, path string) *Config {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		return nil
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil
	}
	return cfg
}

func ParseConfig(data []byte) (*Config, error) {
	expanded, err := envsubst.EvalEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("cannot expand config: %w", err)
	}
	var cfg Config
	err = yaml.Unmarshal([]byte(expanded), &cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func MergeConfig(cfg *Config, add *Config) {
	if add == nil {
		return
	}
	merge := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	merge(&cfg.Storage, add.Storage)
	merge(&cfg.Scene, add.Scene)
	merge(&cfg.Capture, add.Capture)
	merge(&cfg.Latency, add.Latency)
	merge(&cfg.PollPeriod, add.PollPeriod)
	merge(&cfg.Server, add.Server)
	merge(&cfg.LogLevel, add.LogLevel)
}

func duration(v *string, def time.Duration) (time.Duration, error) {
	if v == nil || *v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", *v, err)
	}
	return d, nil
}

func (c *Config) GetLatency() (time.Duration, error) {
	return duration(c.Latency, 0)
}

func (c *Config) GetPollPeriod() (time.Duration, error) {
	return duration(c.PollPeriod, DefaultPollPeriod)
}

// Value dereferences an optional setting.
func Value(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
