// Package pluginregistry discovers, validates, and registers overlay,
// subtitle, audio, and transition effect builders, and resolves
// screenplay effect lists into filter-graph fragments.
//
// Builders cannot be loaded as foreign dynamic code the way the original
// Python plugin loader did: a Go builder is an ordinary function,
// registered at init() time from a package that imports this one. A
// plugin.yaml manifest still describes the plugin for discovery and the
// allow/deny/priority machinery, but "loading" a manifest only validates
// and records metadata — the builder behind it must already be linked in.
package pluginregistry

import "fmt"

// Kind is the category of effect a plugin provides.
type Kind string

const (
	KindOverlay    Kind = "overlay"
	KindSubtitle   Kind = "subtitle"
	KindAudio      Kind = "audio"
	KindTransition Kind = "transition"
)

func validKind(k Kind) bool {
	switch k {
	case KindOverlay, KindSubtitle, KindAudio, KindTransition:
		return true
	}
	return false
}

// Source is where a plugin came from, and doubles as its registration
// priority: higher value wins a naming conflict.
type Source int

const (
	SourceBuiltin Source = 1
	SourcePackage Source = 2
	SourceUser    Source = 3
)

func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourcePackage:
		return "package"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}

// PluginSpec describes one discovered or registered plugin.
type PluginSpec struct {
	PluginID string   `yaml:"plugin_id"`
	Version  string   `yaml:"version"`
	Kind     Kind     `yaml:"kind"`
	Provides []string `yaml:"provides"`
	Source   Source   `yaml:"-"`
	Enabled  bool     `yaml:"-"`
	Path     string   `yaml:"-"`

	// Raw captures any top-level keys not matched above, so Validate can
	// reject manifests carrying unknown keys.
	Raw map[string]interface{} `yaml:",inline"`
}

// Validate checks the required fields and rejects unknown top-level keys.
// known lists every key this struct itself decodes (kept in sync with the
// yaml tags above); anything else surviving in Raw is an unknown key.
var knownManifestKeys = map[string]bool{
	"plugin_id": true, "version": true, "kind": true, "provides": true,
}

func (s *PluginSpec) Validate() error {
	if s.PluginID == "" {
		return fmt.Errorf("plugin manifest missing plugin_id")
	}
	if s.Version == "" {
		return fmt.Errorf("plugin %s: missing version", s.PluginID)
	}
	if !validKind(s.Kind) {
		return fmt.Errorf("plugin %s: invalid kind %q", s.PluginID, s.Kind)
	}
	if len(s.Provides) == 0 {
		return fmt.Errorf("plugin %s: provides list is empty", s.PluginID)
	}
	for k := range s.Raw {
		if !knownManifestKeys[k] {
			return fmt.Errorf("plugin %s: unknown manifest key %q", s.PluginID, k)
		}
	}
	return nil
}

// OverlayBuilder renders an overlay/background/screen effect's parameter
// dict into a filter-graph fragment.
type OverlayBuilder func(params map[string]interface{}) (string, error)

// SubtitleContext carries the rendering state a subtitle-effect builder
// needs beyond its own parameters (current clip duration, target stream
// labels to modify).
type SubtitleContext struct {
	Duration   float64
	InputLabel string
	BaseY      string // the un-modified y expression the effect may rewrite
	// TimeExpr is the ffmpeg expression an effect should use in place of
	// the bare "t" variable. Empty means "t" itself (the common per-clip
	// case, where the filter graph's own timeline already starts at the
	// line's t=0). A scene-level post-overlay pass, where "t" is absolute
	// across the whole concatenated clip, sets this to "(t-<lineStart>)"
	// so per-line effects still animate relative to their own line.
	TimeExpr string
}

// Time returns ctx.TimeExpr if set, else the bare "t" variable.
func (ctx SubtitleContext) Time() string {
	if ctx.TimeExpr == "" {
		return "t"
	}
	return ctx.TimeExpr
}

// SubtitleBuilder renders a subtitle effect against ctx and params.
type SubtitleBuilder func(ctx SubtitleContext, params map[string]interface{}) (string, error)
