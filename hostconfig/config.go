// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hostconfig loads the YAML description of a host and assembles the
// runtime it describes: backends, log endpoints and stores.
package hostconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config
// file location.
const EnvConfigPath = "HOSTCALL_CONFIG"

// Config is the host configuration file.
type Config struct {
	Backends     []BackendConfig              `yaml:"backends"`
	LogEndpoints []LogEndpointConfig          `yaml:"logEndpoints"`
	KVStores     []KVStoreConfig              `yaml:"kvStores"`
	ConfigStores map[string]map[string]string `yaml:"configStores"`
	SecretStores map[string]map[string]string `yaml:"secretStores"`
}

// BackendConfig registers one static backend. Zero timeouts keep the
// defaults.
type BackendConfig struct {
	Name                string        `yaml:"name"`
	Target              string        `yaml:"target"`
	OverrideHost        string        `yaml:"overrideHost"`
	ConnectTimeout      time.Duration `yaml:"connectTimeout"`
	FirstByteTimeout    time.Duration `yaml:"firstByteTimeout"`
	BetweenBytesTimeout time.Duration `yaml:"betweenBytesTimeout"`
	UseSSL              bool          `yaml:"useSSL"`
	SNIHostname         string        `yaml:"sniHostname"`
	CACertificate       string        `yaml:"caCertificate"`
	Pooling             *bool         `yaml:"pooling"`
	HTTPKeepalive       time.Duration `yaml:"httpKeepalive"`
	TCPKeepalive        *TCPKeepalive `yaml:"tcpKeepalive"`
}

// TCPKeepalive tunes TCP keepalive on backend connections.
type TCPKeepalive struct {
	Time     time.Duration `yaml:"time"`
	Interval time.Duration `yaml:"interval"`
	Probes   int           `yaml:"probes"`
}

// LogEndpointConfig declares a named log endpoint.
type LogEndpointConfig struct {
	Name  string `yaml:"name"`
	Level string `yaml:"level"`
	// Format is "text" (default) or "json".
	Format string `yaml:"format"`
}

// KVStoreConfig declares a key-value store.
type KVStoreConfig struct {
	Name string `yaml:"name"`
	// Path persists the store on disk; empty keeps it in memory.
	Path         string  `yaml:"path"`
	MaxValueSize int     `yaml:"maxValueSize"`
	RateLimit    float64 `yaml:"rateLimit"`
	Burst        int     `yaml:"burst"`
}

// Parse decodes a YAML document.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse host config: %w", err)
	}
	return &c, nil
}

// Load reads the config at path. An empty path falls back to $HOSTCALL_CONFIG
// and then to configs/hostcall.yaml and hostcall.yaml in the working
// directory. With no file found, Load returns an empty config.
func Load(path string) (*Config, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	explicit := path != ""
	candidates := []string{path}
	if !explicit {
		candidates = []string{"configs/hostcall.yaml", "hostcall.yaml"}
	}
	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read host config %q: %w", p, err)
		}
		return Parse(data)
	}
	return &Config{}, nil
}
