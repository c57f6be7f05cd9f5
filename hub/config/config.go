// Copyright 2025 PeerBeam, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/peerbeam/peerbeam/constant"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration of the hub server
type Config struct {
	// Host/Port describe the listen address of the embedding HTTP server.
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`

	// WSFallback relays payload traffic through the hub for peers that
	// cannot establish a direct connection.
	WSFallback bool `yaml:"wsFallback"`

	// RTCConfig is the raw JSON blob handed to clients in ws-config. It is
	// validated for JSON well-formedness only.
	RTCConfig string `yaml:"rtcConfig,omitempty"`

	// TrustedProxyHeader names the reverse-proxy header whose first entry
	// overrides the observed socket address. Empty disables the override.
	TrustedProxyHeader string `yaml:"trustedProxyHeader,omitempty"`

	// WebRoot optionally serves the web client from this directory.
	WebRoot string `yaml:"webRoot,omitempty"`

	TLS       *TLS       `yaml:"tls,omitempty"`
	RateLimit *RateLimit `yaml:"rateLimit,omitempty"`
	Heartbeat *Heartbeat `yaml:"heartbeat,omitempty"`
}

// TLS carries the certificate pair for the embedding listener. Termination
// usually happens at the proxy, so both fields are optional.
type TLS struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// RateLimit bounds join-family attempts per peer.
type RateLimit struct {
	Attempts int      `yaml:"attempts,omitempty"`
	Window   Duration `yaml:"window,omitempty"`
}

// Heartbeat tunes the keep-alive supervisor.
type Heartbeat struct {
	Interval      Duration `yaml:"interval,omitempty"`
	TimeoutFactor int      `yaml:"timeoutFactor,omitempty"`
}

// Duration decodes yaml scalars of the "2s" / "500ms" form. Bare integers
// are taken as nanoseconds the way the stdlib would.
type Duration time.Duration

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return errors.Wrapf(err, "parse duration %q", s)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// New returns a config instance with default value
func New() *Config {
	return &Config{
		Host:       "0.0.0.0",
		Port:       3000,
		WSFallback: true,

		RateLimit: &RateLimit{
			Attempts: constant.RateLimitAttempts,
			Window:   Duration(constant.RateLimitWindow),
		},
		Heartbeat: &Heartbeat{
			Interval:      Duration(constant.HeartbeatInterval),
			TimeoutFactor: constant.HeartbeatTimeoutFactor,
		},
	}
}

// FromReader returns the configuration instance from reader
func FromReader(reader io.Reader) (*Config, error) {
	c := New()
	err := yaml.NewDecoder(reader).Decode(c)
	if err != nil {
		return nil, err
	}

	if c.RTCConfig != "" && !json.Valid([]byte(c.RTCConfig)) {
		return nil, errors.New("rtcConfig is not valid JSON")
	}

	return c, nil
}

// FromBytes returns the configuration instance from bytes
func FromBytes(data []byte) (*Config, error) {
	reader := bytes.NewBuffer(data)
	return FromReader(reader)
}

// FromPath returns the configuration instance from file path
func FromPath(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return FromBytes(data)
}

// Addr returns the listen address of the embedding HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
