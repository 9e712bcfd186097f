// Package config holds runtime configuration: screenplay data model,
// defaults, CLI flag parsing, YAML loading, and validation.
package config

import (
	"errors"
	"fmt"
)

// DefaultConfig returns a Config with every ambient default filled in. This
// is the base that Load merges script/defaults YAML onto, and that
// ParseFlags then overrides with CLI-supplied values.
func DefaultConfig() Config {
	return Config{
		Video: VideoParams{
			Width: 1920, Height: 1080, FPS: 30,
			PixFmt: "yuv420p", Profile: "high", Level: "4.1",
			CRF: 20, CQ: 20, Codec: "libx264",
		},
		Audio: AudioParams{
			SampleRate: 48000, Channels: 2, Codec: "aac", Bitrate: "192k",
		},
		Subtitle: SubtitleStyle{
			FontFamily: "Noto Sans JP", FontSize: 48, Color: "white",
			OutlineColor: "black", OutlineWidth: 4, Anchor: AnchorBottomCenter,
			MaxWidthFrac: 0.9,
		},
		Background: BackgroundLayout{
			Fit: FitCover, FillColor: "black", Anchor: AnchorCenter,
		},
		Defaults: DefaultsConfig{
			EnterDuration: 0.3, LeaveDuration: 0.3,
			ClipWorkers: 2, ProfileFirstClips: 4, SceneBaseThreshold: 3,
			FaceAnimFPS: 30, MouthOpenRatio: 0.5, MouthHalfRatio: 0.2,
			BlinkMinInterval: 2, BlinkMaxInterval: 5, BlinkCloseFrames: 2,
			TTSURL: "http://127.0.0.1:50021",
		},
		CacheDir:     ".scenecast-cache",
		Timeline:     TimelineBoth,
		SubtitleFile: SubtitleFileSRT,
		ColorMode:    ColorAuto,
	}
}

// Validate checks enum fields and cross-field constraints. It runs after
// YAML merge and after flag parsing, so it sees the fully-resolved Config.
func (c *Config) Validate() error {
	switch c.Background.Fit {
	case FitStretch, FitContain, FitCover, FitWidth, FitHeight:
		// valid
	default:
		return fmt.Errorf("invalid background fit %q", c.Background.Fit)
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always', or 'never')", c.ColorMode)
	}
	switch c.Timeline {
	case TimelineMD, TimelineCSV, TimelineBoth:
		// valid
	default:
		return fmt.Errorf("invalid timeline format %q (use 'md', 'csv', or 'both')", c.Timeline)
	}
	switch c.SubtitleFile {
	case SubtitleFileSRT, SubtitleFileASS, SubtitleFileBoth:
		// valid
	default:
		return fmt.Errorf("invalid subtitle file format %q (use 'srt', 'ass', or 'both')", c.SubtitleFile)
	}
	if c.ScriptPath == "" {
		return errors.New("need a screenplay script path")
	}
	if c.OutputPath == "" {
		return errors.New("need an output path")
	}
	if len(c.Scenes) == 0 {
		return errors.New("screenplay has no scenes")
	}
	for i, sc := range c.Scenes {
		if sc.Background == "" {
			return fmt.Errorf("scene %d (%s): missing background", i, sceneLabel(sc))
		}
		if len(sc.Lines) == 0 {
			return fmt.Errorf("scene %d (%s): has no lines", i, sceneLabel(sc))
		}
		for j, ln := range sc.Lines {
			if ln.Kind == LineTalk && ln.Text == "" {
				return fmt.Errorf("scene %d line %d: talk line has no text", i, j)
			}
			if ln.Kind == LineWait && ln.Duration <= 0 {
				return fmt.Errorf("scene %d line %d: wait line needs a positive duration", i, j)
			}
		}
	}
	if c.Jobs < 0 {
		return errors.New("jobs must not be negative")
	}
	return nil
}

func sceneLabel(sc Scene) string {
	if sc.ID != "" {
		return sc.ID
	}
	return "unnamed"
}
