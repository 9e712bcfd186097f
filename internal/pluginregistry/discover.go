package pluginregistry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Discover recursively scans roots for plugin.yaml manifests, decodes and
// validates each, and filters by allow/deny lists of plugin_id (allow, if
// non-empty, is a whitelist; deny always wins). A manifest that fails to
// parse or validate is skipped with its error returned alongside whatever
// specs did load successfully, so one bad plugin doesn't block the rest.
func Discover(roots []string, allow, deny []string, source Source) ([]PluginSpec, []error) {
	allowSet := toSet(allow)
	denySet := toSet(deny)

	var specs []PluginSpec
	var errs []error

	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d == nil || d.IsDir() || d.Name() != "plugin.yaml" {
				return nil
			}
			spec, derr := loadManifest(path)
			if derr != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, derr))
				return nil
			}
			if denySet[spec.PluginID] {
				return nil
			}
			if len(allowSet) > 0 && !allowSet[spec.PluginID] {
				return nil
			}
			spec.Source = source
			spec.Path = filepath.Dir(path)
			spec.Enabled = true
			specs = append(specs, spec)
			return nil
		})
	}
	return specs, errs
}

func loadManifest(path string) (PluginSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PluginSpec{}, err
	}
	var spec PluginSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&spec); err != nil {
		return PluginSpec{}, err
	}
	if err := spec.Validate(); err != nil {
		return PluginSpec{}, err
	}
	return spec, nil
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
