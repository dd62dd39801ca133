package resolver

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ichiban/resolver/engine"
)

// Config is the configuration of an Interpreter, usually loaded from a YAML file.
type Config struct {
	// Unknown is the policy for undefined predicates: error, fail or warning.
	Unknown     string        `yaml:"unknown"`
	OccursCheck bool          `yaml:"occurs_check"`
	Timeout     time.Duration `yaml:"timeout"`
	Verbose     bool          `yaml:"verbose"`
}

// Validate checks the values of the configuration.
func (c Config) Validate() error {
	if c.Unknown != "" {
		if _, err := engine.ParseUnknown(c.Unknown); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout %s", c.Timeout)
	}
	return nil
}

// ParseConfig reads a YAML configuration. Unknown keys are rejected.
func ParseConfig(r io.Reader) (Config, error) {
	var c Config
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&c); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}
