package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/dealancer/validate.v2"
	"gopkg.in/yaml.v3"
)

// Load reads the screenplay script (and, if set, a defaults YAML file) into
// cfg and validates the result. cfg must already hold CLI-populated fields
// (ScriptPath, OutputPath, ...) from [ParseFlags]; Load only touches the
// YAML-tagged fields.
//
// Layering, low to high precedence: struct tag defaults (applied by
// [github.com/creasty/defaults]) < --defaults file < script file. YAML
// decoding into an already-populated struct only overwrites keys present in
// the document, so each layer only needs to mention what it overrides.
func Load(cfg *Config) error {
	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("apply config defaults: %w", err)
	}

	if cfg.DefaultsPath != "" {
		if err := decodeYAMLFile(cfg.DefaultsPath, cfg); err != nil {
			return fmt.Errorf("load defaults file %s: %w", cfg.DefaultsPath, err)
		}
	}

	if err := decodeYAMLFile(cfg.ScriptPath, cfg); err != nil {
		return fmt.Errorf("load script %s: %w", cfg.ScriptPath, err)
	}

	if err := defaults.Set(cfg); err != nil {
		return fmt.Errorf("fill remaining config defaults: %w", err)
	}

	if err := validate.Validate(cfg); err != nil {
		return fmt.Errorf("screenplay config: %w", err)
	}

	return cfg.Validate()
}

func decodeYAMLFile(path string, out *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(false)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}
