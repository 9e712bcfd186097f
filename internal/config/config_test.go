package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigFields(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Video.Width != 1920 || cfg.Video.Height != 1080 {
		t.Fatalf("default video size = %dx%d, want 1920x1080", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Fatalf("default sample rate = %d, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.Timeline != TimelineBoth {
		t.Fatalf("default timeline format = %q, want %q", cfg.Timeline, TimelineBoth)
	}
	if cfg.ColorMode != ColorAuto {
		t.Fatalf("default color mode = %q, want %q", cfg.ColorMode, ColorAuto)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "missing script path",
			mutate:  func(c *Config) { c.ScriptPath = "" },
			wantErr: true,
		},
		{
			name:    "missing output path",
			mutate:  func(c *Config) { c.OutputPath = "" },
			wantErr: true,
		},
		{
			name:    "no scenes",
			mutate:  func(c *Config) { c.Scenes = nil },
			wantErr: true,
		},
		{
			name:    "scene with no background",
			mutate:  func(c *Config) { c.Scenes[0].Background = "" },
			wantErr: true,
		},
		{
			name:    "scene with no lines",
			mutate:  func(c *Config) { c.Scenes[0].Lines = nil },
			wantErr: true,
		},
		{
			name:    "talk line with no text",
			mutate:  func(c *Config) { c.Scenes[0].Lines[0].Text = "" },
			wantErr: true,
		},
		{
			name:    "negative jobs",
			mutate:  func(c *Config) { c.Jobs = -1 },
			wantErr: true,
		},
		{
			name:    "invalid color mode",
			mutate:  func(c *Config) { c.ColorMode = "rainbow" },
			wantErr: true,
		},
		{
			name:    "valid config unchanged",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("Validate() = nil, want error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestWaitLineRequiresPositiveDuration(t *testing.T) {
	cfg := validConfig()
	cfg.Scenes[0].Lines = append(cfg.Scenes[0].Lines, Line{Kind: LineWait, Duration: 0})
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for zero-duration wait line")
	}
}

func TestLineUnmarshalYAMLTagsKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	script := `
scenes:
  - id: scene1
    bg: bg.png
    lines:
      - text: "hello there"
        speaker_name: narrator
      - duration: 1.5
`
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ScriptPath = path
	cfg.OutputPath = filepath.Join(dir, "out.mp4")
	if err := Load(&cfg); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if len(cfg.Scenes) != 1 || len(cfg.Scenes[0].Lines) != 2 {
		t.Fatalf("unexpected scene/line shape: %+v", cfg.Scenes)
	}
	if cfg.Scenes[0].Lines[0].Kind != LineTalk {
		t.Fatalf("line 0 Kind = %q, want %q", cfg.Scenes[0].Lines[0].Kind, LineTalk)
	}
	if cfg.Scenes[0].Lines[1].Kind != LineWait {
		t.Fatalf("line 1 Kind = %q, want %q", cfg.Scenes[0].Lines[1].Kind, LineWait)
	}
	if cfg.Scenes[0].Lines[1].Duration != 1.5 {
		t.Fatalf("line 1 Duration = %v, want 1.5", cfg.Scenes[0].Lines[1].Duration)
	}
}

func TestLoadMergesDefaultsFileUnderScript(t *testing.T) {
	dir := t.TempDir()
	defaultsPath := filepath.Join(dir, "defaults.yaml")
	scriptPath := filepath.Join(dir, "script.yaml")

	if err := os.WriteFile(defaultsPath, []byte("video:\n  width: 1280\n  height: 720\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	script := `
video:
  fps: 24
scenes:
  - bg: bg.png
    lines:
      - text: hi
`
	if err := os.WriteFile(scriptPath, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ScriptPath = scriptPath
	cfg.DefaultsPath = defaultsPath
	cfg.OutputPath = filepath.Join(dir, "out.mp4")
	if err := Load(&cfg); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Video.Width != 1280 || cfg.Video.Height != 720 {
		t.Fatalf("Video width/height = %d/%d, want 1280/720 from defaults file", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Video.FPS != 24 {
		t.Fatalf("Video.FPS = %d, want 24 from script override", cfg.Video.FPS)
	}
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.ScriptPath = "script.yaml"
	cfg.OutputPath = "out.mp4"
	cfg.Scenes = []Scene{
		{
			ID:         "scene1",
			Background: "bg.png",
			Lines: []Line{
				{Kind: LineTalk, Text: "hello"},
			},
		},
	}
	return cfg
}
