package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/fsdcheck/pkg/errors"
)

// DefaultFileNames are searched, in order, by [Find].
var DefaultFileNames = []string{
	".fsdcheck.toml",
	"fsdcheck.toml",
	".fsdcheck.yaml",
	".fsdcheck.yml",
	".fsdcheck.json",
}

// Load reads a policy document from path. The format is chosen by file
// extension (.toml, .yaml/.yml or .json). Unknown keys are rejected so that
// misspelled settings do not silently fall back to defaults.
//
// The returned configuration has defaults applied and is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "read config")
	}
	return Parse(data, formatOf(path))
}

// Parse decodes a policy document in the given format ("toml", "yaml" or
// "json"), applies defaults and validates it.
func Parse(data []byte, format string) (*Config, error) {
	var c Config
	var err error
	switch format {
	case "toml":
		err = decodeTOML(data, &c)
	case "yaml":
		err = decodeYAML(data, &c)
	case "json":
		err = decodeJSON(data, &c)
	default:
		return nil, errors.New(errors.ErrCodeConfig, "unsupported config format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "decode %s config", format)
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

func decodeTOML(data []byte, c *Config) error {
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func decodeJSON(data []byte, c *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// Find looks for a policy document in dir and returns its path, or "" if
// none of [DefaultFileNames] exists.
func Find(dir string) string {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// LoadOrDefault loads path when set, otherwise the first policy document
// found in dir, otherwise [Default]. The second return value is the file that
// was read ("" for the default).
func LoadOrDefault(path, dir string) (*Config, string, error) {
	if path == "" {
		path = Find(dir)
	}
	if path == "" {
		return Default(), "", nil
	}
	c, err := Load(path)
	return c, path, err
}

// WriteTOML encodes c as TOML.
func WriteTOML(w io.Writer, c *Config) error {
	return toml.NewEncoder(w).Encode(c)
}
