package formula

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// scalar accepts strings, numbers and booleans and keeps their literal text,
// so that `compiler.version: 7.10` is not turned into "7.1".
type scalar string

func (s *scalar) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = scalar(str)
		return nil
	}
	if bytes.Equal(data, []byte("null")) || bytes.HasPrefix(data, []byte("{")) || bytes.HasPrefix(data, []byte("[")) {
		return fmt.Errorf("%w: %s is not a scalar", ErrInvalidValue, data)
	}
	*s = scalar(data)
	return nil
}

type profile struct {
	Settings map[string]scalar `yaml:"settings" json:"settings"`
	Options  map[string]scalar `yaml:"options" json:"options"`
}

// LoadProfile reads a configuration profile. YAML (.yaml, .yml) and JSON
// with comments (.json, .jsonc) are supported:
//
//	settings:
//	  os: Linux
//	  compiler: gcc
//	  compiler.version: "7"
//	options:
//	  shared: true
//	  without_python: true
//
// Options not mentioned keep their defaults. Unknown keys are rejected.
func LoadProfile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := ParseProfile(filepath.Ext(path), data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseProfile parses profile data; ext selects the syntax.
func ParseProfile(ext string, data []byte) (Config, error) {
	var p profile
	switch ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return Config{}, fmt.Errorf("parsing profile: %w", err)
		}
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return Config{}, fmt.Errorf("parsing profile: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported profile format %q", ext)
	}

	cfg := Config{Options: DefaultOptions()}
	for _, k := range sortedKeys(p.Settings) {
		if err := cfg.Settings.SetSetting(k, string(p.Settings[k])); err != nil {
			return Config{}, err
		}
	}
	for _, k := range sortedKeys(p.Options) {
		if err := cfg.Options.SetOption(k, string(p.Options[k])); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func sortedKeys(m map[string]scalar) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
