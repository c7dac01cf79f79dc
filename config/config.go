// Package config holds the harness settings: how to build and run the server and client under
// test, where their fixtures live, and where to write reports.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "harness.yaml"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Report ReportConfig `yaml:"report"`
}

type ServerConfig struct {
	Build    []string `yaml:"build"`
	Clean    []string `yaml:"clean"`
	Artifact string   `yaml:"artifact"`
	// Args are passed to the artifact when it is started.
	Args     []string `yaml:"args"`
	Dir      string   `yaml:"dir"`
	Env      []string `yaml:"env"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Fixtures string   `yaml:"fixtures"`

	LiveAttempts   int           `yaml:"live_attempts"`
	LiveInterval   time.Duration `yaml:"live_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StopGrace      time.Duration `yaml:"stop_grace"`
}

// Addr is the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ProbeURL is the liveness probe target.
func (s ServerConfig) ProbeURL() string {
	return "http://" + s.Addr() + "/"
}

type ClientConfig struct {
	Build    []string `yaml:"build"`
	Clean    []string `yaml:"clean"`
	Artifact string   `yaml:"artifact"`
	Dir      string   `yaml:"dir"`
	Env      []string `yaml:"env"`
	// Target is the host argument given to the client, e.g. httpbin.org:80.
	Target   string        `yaml:"target"`
	Fixtures string        `yaml:"fixtures"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ReportConfig struct {
	JSON string `yaml:"json"`
	XLSX string `yaml:"xlsx"`
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Build:          []string{"cargo", "build", "-p", "server"},
			Clean:          []string{"cargo", "clean", "-p", "server"},
			Artifact:       "target/debug/server",
			Host:           "127.0.0.1",
			Port:           7878,
			Fixtures:       "server/test_data",
			LiveAttempts:   5,
			LiveInterval:   time.Second,
			RequestTimeout: 10 * time.Second,
			StopGrace:      5 * time.Second,
		},
		Client: ClientConfig{
			Build:    []string{"cargo", "build", "-p", "client"},
			Clean:    []string{"cargo", "clean", "-p", "client"},
			Artifact: "target/debug/client",
			Target:   "httpbin.org:80",
			Fixtures: "client/test_data",
			Timeout:  30 * time.Second,
		},
	}
}

// LoadEnvFile loads variables from a dotenv file into the environment, without overriding
// variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads a YAML config file over the defaults. ${VAR} references are expanded from the
// environment before parsing.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateClient()
}

func (c *Config) validateServer() error {
	s := c.Server
	if len(s.Build) == 0 || s.Build[0] == "" {
		return fmt.Errorf("server.build is required")
	}
	if s.Artifact == "" {
		return fmt.Errorf("server.artifact is required")
	}
	if s.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if s.Fixtures == "" {
		return fmt.Errorf("server.fixtures is required")
	}
	if s.LiveAttempts <= 0 {
		return fmt.Errorf("server.live_attempts must be positive")
	}
	if s.LiveInterval <= 0 {
		return fmt.Errorf("server.live_interval must be positive")
	}
	if s.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if s.StopGrace <= 0 {
		return fmt.Errorf("server.stop_grace must be positive")
	}
	return nil
}

func (c *Config) validateClient() error {
	cl := c.Client
	if len(cl.Build) == 0 || cl.Build[0] == "" {
		return fmt.Errorf("client.build is required")
	}
	if cl.Artifact == "" {
		return fmt.Errorf("client.artifact is required")
	}
	if cl.Target == "" {
		return fmt.Errorf("client.target is required")
	}
	if cl.Fixtures == "" {
		return fmt.Errorf("client.fixtures is required")
	}
	if cl.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}
	return nil
}
