package pluginregistry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/scenecast/scenecast/internal/config"
)

type fakeLog struct{ warns []string }

func (f *fakeLog) Warn(format string, args ...interface{}) { f.warns = append(f.warns, format) }

func TestRegisterOverlayPriorityReplacesLowerOnly(t *testing.T) {
	log := &fakeLog{}
	reg := New(log)

	builtin := func(map[string]interface{}) (string, error) { return "builtin", nil }
	pkg := func(map[string]interface{}) (string, error) { return "package", nil }
	user := func(map[string]interface{}) (string, error) { return "user", nil }

	if ok := reg.RegisterOverlay("bg:glow", PluginSpec{Source: SourceBuiltin}, builtin); !ok {
		t.Fatal("first registration should succeed")
	}
	if ok := reg.RegisterOverlay("bg:glow", PluginSpec{Source: SourceBuiltin}, pkg); ok {
		t.Error("equal priority should not replace")
	}
	if ok := reg.RegisterOverlay("bg:glow", PluginSpec{Source: SourcePackage}, pkg); !ok {
		t.Error("higher priority (package > builtin) should replace")
	}
	if ok := reg.RegisterOverlay("bg:glow", PluginSpec{Source: SourceBuiltin}, builtin); ok {
		t.Error("lower priority should not replace existing package registration")
	}
	if ok := reg.RegisterOverlay("bg:glow", PluginSpec{Source: SourceUser}, user); !ok {
		t.Error("user should replace package")
	}

	got, ok := reg.resolveOverlay("bg:glow")
	if !ok {
		t.Fatal("expected bg:glow to resolve")
	}
	frag, _ := got.builder(nil)
	if frag != "user" {
		t.Errorf("resolved builder = %q, want user's", frag)
	}
}

func TestResolveOverlayEffectsSkipsUnregisteredAndErroring(t *testing.T) {
	log := &fakeLog{}
	reg := New(log)
	reg.RegisterOverlay("ok:effect", PluginSpec{Source: SourceBuiltin}, func(map[string]interface{}) (string, error) {
		return "frag1", nil
	})
	reg.RegisterOverlay("bad:effect", PluginSpec{Source: SourceBuiltin}, func(map[string]interface{}) (string, error) {
		return "", errors.New("boom")
	})

	effects := []config.Effect{
		{Type: "ok:effect"},
		{Type: "missing:effect"},
		{Type: "bad:effect"},
	}
	frags := reg.ResolveOverlayEffects(effects, 1.5)
	if len(frags) != 1 || frags[0] != "frag1" {
		t.Errorf("frags = %v, want [frag1]", frags)
	}
	if len(log.warns) != 2 {
		t.Errorf("expected 2 warnings (missing + erroring), got %d", len(log.warns))
	}
}

func TestResolveOverlayEffectsRecoversFromPanic(t *testing.T) {
	log := &fakeLog{}
	reg := New(log)
	reg.RegisterOverlay("panicky", PluginSpec{Source: SourceBuiltin}, func(map[string]interface{}) (string, error) {
		panic("unexpected")
	})
	frags := reg.ResolveOverlayEffects([]config.Effect{{Type: "panicky"}}, 1)
	if len(frags) != 0 {
		t.Errorf("expected panicking builder to be skipped, got %v", frags)
	}
}

func TestAliasResolution(t *testing.T) {
	log := &fakeLog{}
	reg := New(log)
	reg.RegisterOverlay("char:shake_char", PluginSpec{Source: SourceBuiltin}, buildShakeChar)
	reg.RegisterAlias("char:wobble", "char:shake_char", PluginSpec{Source: SourceBuiltin})

	frags := reg.ResolveOverlayEffects([]config.Effect{{Type: "char:wobble"}}, 2)
	if len(frags) != 1 {
		t.Fatalf("expected alias to resolve, got %v", frags)
	}
}

func TestPluginSpecValidateRejectsUnknownKeys(t *testing.T) {
	s := PluginSpec{
		PluginID: "p", Version: "1.0", Kind: KindOverlay, Provides: []string{"x"},
		Raw: map[string]interface{}{"mystery": true},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected unknown-key rejection")
	}
}

func TestPluginSpecValidateRejectsBadKind(t *testing.T) {
	s := PluginSpec{PluginID: "p", Version: "1.0", Kind: "nonsense", Provides: []string{"x"}}
	if err := s.Validate(); err == nil {
		t.Error("expected invalid kind rejection")
	}
}

func TestDiscoverFindsManifestsAndAppliesDenyList(t *testing.T) {
	root := t.TempDir()
	write := func(dir, content string) {
		full := filepath.Join(root, dir)
		os.MkdirAll(full, 0o755)
		os.WriteFile(filepath.Join(full, "plugin.yaml"), []byte(content), 0o644)
	}
	write("good", "plugin_id: good\nversion: \"1.0\"\nkind: overlay\nprovides: [\"bg:good\"]\n")
	write("denied", "plugin_id: denied\nversion: \"1.0\"\nkind: overlay\nprovides: [\"bg:denied\"]\n")
	write("broken", "plugin_id: broken\n") // missing required fields

	specs, errs := Discover([]string{root}, nil, []string{"denied"}, SourceUser)
	if len(specs) != 1 || specs[0].PluginID != "good" {
		t.Errorf("specs = %v, want just 'good'", specs)
	}
	if len(errs) != 1 {
		t.Errorf("expected 1 error for the broken manifest, got %d: %v", len(errs), errs)
	}
}

func TestRegisterBuiltinsWiresAllShakeEffects(t *testing.T) {
	log := &fakeLog{}
	reg := New(log)
	RegisterBuiltins(reg)
	for _, id := range []string{"bg:shake_bg", "char:shake_char", "char:bob_char", "char:sway_char", "screen:shake_screen"} {
		if _, ok := reg.resolveOverlay(id); !ok {
			t.Errorf("builtin %q not registered", id)
		}
	}
}
