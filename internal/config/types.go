// Package config holds the screenplay data model (Config, Scene, Line),
// runtime defaults, YAML loading/merging, validation, and CLI flag
// parsing. The YAML grammar for effect/overlay parameter bags is kept
// intentionally generic (map[string]interface{}); deep per-effect schema
// validation is an external concern (see spec.md's scope notes).
package config

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// TimelineFormat selects which timeline report(s) to emit.
type TimelineFormat string

const (
	TimelineMD   TimelineFormat = "md"
	TimelineCSV  TimelineFormat = "csv"
	TimelineBoth TimelineFormat = "both"
)

// SubtitleFileFormat selects which subtitle report(s) to emit.
type SubtitleFileFormat string

const (
	SubtitleFileSRT  SubtitleFileFormat = "srt"
	SubtitleFileASS  SubtitleFileFormat = "ass"
	SubtitleFileBoth SubtitleFileFormat = "both"
)

// FitMode is a background layout's fit strategy.
type FitMode string

const (
	FitStretch   FitMode = "stretch"
	FitContain   FitMode = "contain"
	FitCover     FitMode = "cover"
	FitWidth     FitMode = "fit_width"
	FitHeight    FitMode = "fit_height"
)

// AnchorMode is a 3x3 anchor grid used for overlay/background placement.
type AnchorMode string

const (
	AnchorTopLeft      AnchorMode = "top_left"
	AnchorTopCenter    AnchorMode = "top_center"
	AnchorTopRight     AnchorMode = "top_right"
	AnchorCenterLeft   AnchorMode = "center_left"
	AnchorCenter       AnchorMode = "center"
	AnchorCenterRight  AnchorMode = "center_right"
	AnchorBottomLeft   AnchorMode = "bottom_left"
	AnchorBottomCenter AnchorMode = "bottom_center"
	AnchorBottomRight  AnchorMode = "bottom_right"
)

// EnterEffect / LeaveEffect values for character overlays.
const (
	EffectNone       = "none"
	EffectFade       = "fade"
	EffectSlideLeft  = "slide_left"
	EffectSlideRight = "slide_right"
	EffectSlideTop   = "slide_top"
	EffectSlideBottom = "slide_bottom"
)

// Point is an (x, y) offset in pixels, relative to the anchor.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// BackgroundLayout controls how a background image/video is fit into the
// output frame. Only the top-level Config.Background layout is used, for
// every scene and line; Scene.Background and Line.Background override the
// background path only, and no scene- or line-level layout is merged in.
type BackgroundLayout struct {
	Fit       FitMode    `yaml:"fit" default:"cover"`
	FillColor string     `yaml:"fill_color" default:"black"`
	Anchor    AnchorMode `yaml:"anchor" default:"center"`
	Position  Point      `yaml:"position"`
}

// VideoParams controls the encoder's video output settings.
type VideoParams struct {
	Width   int    `yaml:"width" default:"1920" validate:"gte=2"`
	Height  int    `yaml:"height" default:"1080" validate:"gte=2"`
	FPS     int    `yaml:"fps" default:"30" validate:"gte=1"`
	PixFmt  string `yaml:"pix_fmt" default:"yuv420p"`
	Profile string `yaml:"profile" default:"high"`
	Level   string `yaml:"level" default:"4.1"`
	CRF     int    `yaml:"crf" default:"20" validate:"gte=0"`
	CQ      int    `yaml:"cq" default:"20" validate:"gte=0"`
	Bitrate string `yaml:"bitrate"`
	Codec   string `yaml:"codec" default:"libx264" validate:"empty=false"`
}

// AudioParams controls the encoder's audio output settings.
type AudioParams struct {
	SampleRate int    `yaml:"sample_rate" default:"48000" validate:"gte=8000"`
	Channels   int    `yaml:"channels" default:"2" validate:"gte=1"`
	Codec      string `yaml:"codec" default:"aac" validate:"empty=false"`
	Bitrate    string `yaml:"bitrate" default:"192k"`
}

// SubtitleStyle controls subtitle PNG rasterization (external collaborator;
// this struct only carries the parameters passed through to it) and burn-in
// placement.
type SubtitleStyle struct {
	FontFamily   string  `yaml:"font_family" default:"Noto Sans JP"`
	FontSize     int     `yaml:"font_size" default:"48"`
	Color        string  `yaml:"color" default:"white"`
	OutlineColor string  `yaml:"outline_color" default:"black"`
	OutlineWidth int     `yaml:"outline_width" default:"4"`
	Anchor       AnchorMode `yaml:"anchor" default:"bottom_center"`
	Position     Point   `yaml:"position"`
	MaxWidthFrac float64 `yaml:"max_width_frac" default:"0.9"`
}

// BGMConfig controls a global background-music track mixed in by the
// Finalize Phase.
type BGMConfig struct {
	Path        string  `yaml:"path"`
	Volume      float64 `yaml:"volume" default:"0.3"`
	StartOffset float64 `yaml:"start_offset"`
	FadeIn      float64 `yaml:"fade_in"`
	FadeOut     float64 `yaml:"fade_out"`
}

// PluginsConfig configures plugin discovery (see internal/pluginregistry).
type PluginsConfig struct {
	Roots []string `yaml:"roots"`
	Allow []string `yaml:"allow"`
	Deny  []string `yaml:"deny"`
}

// DefaultsConfig holds cross-cutting tunables referenced by several
// phases (planner thresholds, face-anim parameters, auto-tune knobs).
type DefaultsConfig struct {
	EnterDuration      float64 `yaml:"enter_duration" default:"0.3"`
	LeaveDuration      float64 `yaml:"leave_duration" default:"0.3"`
	ClipWorkers        int     `yaml:"clip_workers" default:"2"`
	ProfileFirstClips  int     `yaml:"profile_first_clips" default:"4"`
	SceneBaseThreshold int     `yaml:"scene_base_threshold" default:"3"`
	FaceAnimFPS        int     `yaml:"face_anim_fps" default:"30"`
	MouthOpenRatio     float64 `yaml:"mouth_open_ratio" default:"0.5"`
	MouthHalfRatio     float64 `yaml:"mouth_half_ratio" default:"0.2"`
	BlinkMinInterval   float64 `yaml:"blink_min_interval" default:"2"`
	BlinkMaxInterval   float64 `yaml:"blink_max_interval" default:"5"`
	BlinkCloseFrames   int     `yaml:"blink_close_frames" default:"2"`
	TTSURL             string  `yaml:"tts_url" default:"http://127.0.0.1:50021"`
	CacheTTLHours      float64 `yaml:"cache_ttl_hours" default:"168" validate:"gte=0"`
	CacheMaxSizeMB     int64   `yaml:"cache_max_size_mb" default:"10240" validate:"gte=0"`
}

// Effect is a generically-parameterized overlay/background/screen effect
// resolved by the plugin registry. Params is consumed generically by
// builder functions (spec.md §9, dynamic-typing note).
type Effect struct {
	Type   string                 `yaml:"type"`
	Params map[string]interface{} `yaml:"params"`
}

// InsertSpec is an inline image/video insert overlaid on a line's clip.
type InsertSpec struct {
	Path     string  `yaml:"path"`
	X        int     `yaml:"x"`
	Y        int     `yaml:"y"`
	Scale    float64 `yaml:"scale" default:"1.0"`
	HasAudio bool    `yaml:"has_audio"`
}

// CharacterOverlay places a character sprite on a talk line, with optional
// enter/leave animation.
type CharacterOverlay struct {
	Name            string     `yaml:"name"`
	Expression      string     `yaml:"expression" default:"default"`
	ImagePath       string     `yaml:"image_path"`
	Visible         bool       `yaml:"visible" default:"true"`
	Scale           float64    `yaml:"scale" default:"1.0"`
	Anchor          AnchorMode `yaml:"anchor" default:"bottom_center"`
	Position        Point      `yaml:"position"`
	EnterEffect     string     `yaml:"enter_effect" default:"none"`
	EnterDuration   float64    `yaml:"enter_duration"`
	LeaveEffect     string     `yaml:"leave_effect" default:"none"`
	LeaveDuration   float64    `yaml:"leave_duration"`
	DynamicPosition bool       `yaml:"dynamic_position"`
	// Effects carries per-character overlay effects (char:shake_char,
	// char:bob_char, char:sway_char) resolved by internal/pluginregistry.
	// Not named as a distinct field in spec.md's OverlayPlacement, but
	// spec.md §4.5 step 4 requires character-specific effects to come
	// from somewhere; this is the natural home for them.
	Effects []Effect `yaml:"effects"`
}

// ForegroundOverlay is a scene- or line-level static image overlay (not a
// character), e.g. a logo or UI frame.
type ForegroundOverlay struct {
	Name      string     `yaml:"name"`
	ImagePath string     `yaml:"image_path"`
	Scale     float64    `yaml:"scale" default:"1.0"`
	Anchor    AnchorMode `yaml:"anchor" default:"top_left"`
	Position  Point      `yaml:"position"`
}

// VoiceLayer is one layer of a multi-layer line synthesis (e.g. a shout
// doubled with a whisper layer underneath).
type VoiceLayer struct {
	SpeakerID   int     `yaml:"speaker_id"`
	SpeakerName string  `yaml:"speaker_name"`
	Text        string  `yaml:"text"`
	Speed       float64 `yaml:"speed" default:"1.0"`
	Pitch       float64 `yaml:"pitch"`
	Volume      float64 `yaml:"volume" default:"1.0"`
	DelayMs     int     `yaml:"delay_ms"`
}

// SoundEffect is a one-shot or looping audio clip mixed into a line's
// track alongside speech.
type SoundEffect struct {
	Path    string  `yaml:"path"`
	Volume  float64 `yaml:"volume" default:"1.0"`
	DelayMs int     `yaml:"delay_ms"`
	Loop    bool    `yaml:"loop"`
}

// LineKind distinguishes a talk line from a silent wait line.
type LineKind string

const (
	LineTalk LineKind = "talk"
	LineWait LineKind = "wait"
)

// Line is either a talk line or a wait line, tagged by Kind. Talk-only
// fields are zero-valued on a wait line and vice versa; this avoids an
// interface/back-pointer cycle between Scene, Line, and LineData
// (spec.md §9, cyclic-dependencies note).
type Line struct {
	Kind LineKind `yaml:"-"`

	// Wait-only.
	Duration float64 `yaml:"duration"`

	// Talk-only.
	Text             string              `yaml:"text"`
	Reading          string              `yaml:"reading"`
	SpeakerID        *int                `yaml:"speaker_id"`
	SpeakerName      string              `yaml:"speaker_name"`
	Speed            float64             `yaml:"speed" default:"1.0"`
	Pitch            float64             `yaml:"pitch"`
	VoiceLayers      []VoiceLayer        `yaml:"voice_layers"`
	SoundEffects     []SoundEffect       `yaml:"sound_effects"`
	Characters       []CharacterOverlay  `yaml:"characters"`
	Insert           *InsertSpec         `yaml:"insert"`
	FGOverlays       []ForegroundOverlay `yaml:"fg_overlays"`
	Subtitle         *string             `yaml:"subtitle"`
	SubtitleEffects  []Effect            `yaml:"subtitle_effects"`
	ScreenEffects    []Effect            `yaml:"screen_effects"`
	BackgroundEffects []Effect           `yaml:"background_effects"`
	Background       *string             `yaml:"background"`
}

// rawLine is the YAML wire shape used to detect whether a line is a wait
// line (only a duration field set) or a talk line.
type rawLine struct {
	Duration *float64 `yaml:"duration"`
	Text     *string  `yaml:"text"`
}

// UnmarshalYAML tags the decoded Line with its Kind based on presence of
// text vs. duration-only, mirroring the original Python screenplay's
// dynamically-typed leaf variant (spec.md §9).
func (l *Line) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Line
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*l = Line(p)
	if l.Text == "" && l.Duration > 0 {
		l.Kind = LineWait
	} else {
		l.Kind = LineTalk
	}
	return nil
}

// Scene is an ordered sequence of lines sharing one background and an
// optional scene-level BGM/transition/foreground overlay set.
type Scene struct {
	ID         string              `yaml:"id"`
	Background string              `yaml:"bg"`
	BGM        *string             `yaml:"bgm"`
	Transition *string             `yaml:"transition"`
	FGOverlays []ForegroundOverlay `yaml:"fg_overlays"`
	Lines      []Line              `yaml:"lines"`
}

// Config is the merged, validated screenplay and defaults. Immutable
// after Load returns. CLI-only fields below are populated by ParseFlags,
// not by YAML.
type Config struct {
	Scenes     []Scene          `yaml:"scenes"`
	Video      VideoParams      `yaml:"video"`
	Audio      AudioParams      `yaml:"audio"`
	Subtitle   SubtitleStyle    `yaml:"subtitle"`
	BGM        *BGMConfig       `yaml:"bgm"`
	Background BackgroundLayout `yaml:"background"`
	Plugins    PluginsConfig    `yaml:"plugins"`
	Defaults   DefaultsConfig   `yaml:"defaults"`

	// --- CLI-populated (not from YAML) ---

	ScriptPath   string
	DefaultsPath string
	OutputPath   string
	CacheDir     string

	NoCache      bool
	CacheRefresh bool
	Jobs         int // Validated to be >= 0; not read by the render pipeline, whose clip concurrency comes from Defaults.ClipWorkers and auto-tune.

	Timeline       TimelineFormat
	NoTimeline     bool
	SubtitleFile   SubtitleFileFormat
	NoSubtitleFile bool

	Verbose   bool
	LogJSON   bool
	ColorMode ColorMode
	LogFile   string

	FinalCopyOnly bool
}
