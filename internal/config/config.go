// Package config loads the producer list of the demo pipeline from a JSON file
// and the sink settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

const (
	EnvNATSURL = "NATS_URL"
	EnvSubject = "CONDUIT_SUBJECT"

	DefaultSubject = "conduit.readings"
)

// Producer describes one simulated sensor.
type Producer struct {
	Name      string  `json:"name" jsonschema:"minLength=1,description=Name reported in every reading"`
	Latitude  float64 `json:"latitude" jsonschema:"minimum=-90,maximum=90"`
	Longitude float64 `json:"longitude" jsonschema:"minimum=-180,maximum=180"`
}

type Config struct {
	Producers []Producer `json:"producers" jsonschema:"minItems=1"`

	// NATSURL and Subject come from the environment.
	NATSURL string `json:"-"`
	Subject string `json:"-"`
}

// rawProducer keeps pointers so missing coordinates can be told from zero.
type rawProducer struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type rawConfig struct {
	Producers []rawProducer `json:"producers"`
}

// Load reads the file at path and applies the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var err error
	if len(raw.Producers) == 0 {
		err = errors.Join(err, errors.New("at least one producer is required"))
	}
	cfg := &Config{Producers: make([]Producer, 0, len(raw.Producers))}
	for i, p := range raw.Producers {
		if p.Name == "" {
			err = errors.Join(err, fmt.Errorf("producers[%d]: name is required", i))
		}
		if p.Latitude == nil {
			err = errors.Join(err, fmt.Errorf("producers[%d]: latitude is required", i))
		}
		if p.Longitude == nil {
			err = errors.Join(err, fmt.Errorf("producers[%d]: longitude is required", i))
		}
		if err != nil {
			continue
		}
		cfg.Producers = append(cfg.Producers, Producer{Name: p.Name, Latitude: *p.Latitude, Longitude: *p.Longitude})
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks coordinate ranges and name uniqueness.
func (c *Config) Validate() error {
	var err error
	seen := make(map[string]struct{}, len(c.Producers))
	for i, p := range c.Producers {
		if p.Latitude < -90 || p.Latitude > 90 {
			err = errors.Join(err, fmt.Errorf("producers[%d]: latitude %g out of range", i, p.Latitude))
		}
		if p.Longitude < -180 || p.Longitude > 180 {
			err = errors.Join(err, fmt.Errorf("producers[%d]: longitude %g out of range", i, p.Longitude))
		}
		if _, dup := seen[p.Name]; dup {
			err = errors.Join(err, fmt.Errorf("producers[%d]: duplicate name %q", i, p.Name))
		}
		seen[p.Name] = struct{}{}
	}
	return err
}

// ApplyEnv fills the sink settings from lookup, keeping the subject default
// when the variable is unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvNATSURL); ok {
		c.NATSURL = v
	}
	c.Subject = DefaultSubject
	if v, ok := lookup(EnvSubject); ok && v != "" {
		c.Subject = v
	}
}

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

// Schema returns the JSON schema of the configuration file.
func Schema() ([]byte, error) {
	schema := reflector.Reflect(&Config{})
	return json.MarshalIndent(schema, "", "  ")
}
