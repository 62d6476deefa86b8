package formula

import (
	"fmt"
	"strings"
)

// Config is a complete recipe configuration: where and how to build, and
// which optional parts to build.
type Config struct {
	Settings Settings
	Options  Options
}

// NewConfig returns a Config with the given settings and default options.
func NewConfig(settings Settings) Config {
	return Config{Settings: settings, Options: DefaultOptions()}
}

// Clone returns a deep copy of c. Mutating the copy never affects c.
func (c Config) Clone() Config {
	c.Options = c.Options.Clone()
	return c
}

// Set assigns a setting or option given as "key=value".
// kind is "setting" or "option".
func (c *Config) Set(kind, assignment string) error {
	key, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("%w: %q is not of the form key=value", ErrInvalidValue, assignment)
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	switch kind {
	case "setting":
		return c.Settings.SetSetting(key, value)
	case "option":
		return c.Options.SetOption(key, value)
	}
	return fmt.Errorf("unknown assignment kind %q", kind)
}

// Validate checks settings and options.
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	return c.Options.Validate()
}

// Matrix returns the single-valued matrix describing c.
func (c *Config) Matrix() Matrix {
	s := c.Settings
	require := map[string][]string{}
	add := func(key, value string) {
		if value != "" {
			require[key] = []string{key + "=" + value}
		}
	}
	add("os", string(s.OS))
	add("arch", string(s.Arch))
	add("build_type", string(s.BuildType))
	add("compiler", s.Compiler.Name)
	add("compiler.version", s.Compiler.Version)
	add("compiler.runtime", string(s.Compiler.Runtime))
	add("compiler.libcxx", string(s.Compiler.LibCxx))

	options := map[string][]string{}
	for _, kv := range c.Options.Values() {
		options[kv[0]] = []string{kv[0] + "=" + kv[1]}
	}
	return Matrix{Require: require, Options: options}
}

// Key returns a deterministic textual identity of c. Two configurations
// have the same key iff they are equal.
func (c *Config) Key() string {
	m := c.Matrix()
	return m.String()
}
