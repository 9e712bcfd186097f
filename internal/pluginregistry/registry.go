package pluginregistry

import (
	"fmt"
	"sync"

	"github.com/scenecast/scenecast/internal/config"
)

// Logger receives skip/replace diagnostics. Matches the minimal interface
// shape used across the repo (internal/check, internal/capability).
type Logger interface {
	Warn(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

type overlayRegistration struct {
	spec    PluginSpec
	builder OverlayBuilder
}

type subtitleRegistration struct {
	spec    PluginSpec
	builder SubtitleBuilder
}

// Registry holds the effect-id -> builder table plus alias resolution.
// Safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	overlay  map[string]overlayRegistration
	subtitle map[string]subtitleRegistration
	aliases  map[string]string // alias -> canonical effect_id

	log Logger
}

// New returns an empty Registry.
func New(log Logger) *Registry {
	if log == nil {
		log = nopLogger{}
	}
	return &Registry{
		overlay:  make(map[string]overlayRegistration),
		subtitle: make(map[string]subtitleRegistration),
		aliases:  make(map[string]string),
		log:      log,
	}
}

// RegisterOverlay registers builder under effectID from spec. If effectID
// is already registered, the new registration wins only if spec.Source
// outranks (strictly) the existing one; equal or lower priority is
// ignored. Returns true if the registration took effect.
func (r *Registry) RegisterOverlay(effectID string, spec PluginSpec, builder OverlayBuilder) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.overlay[effectID]
	if ok && existing.spec.Source >= spec.Source {
		r.log.Warn("plugin %s: effect %q already provided by %s (%s), ignoring %s registration",
			spec.PluginID, effectID, existing.spec.PluginID, existing.spec.Source, spec.Source)
		return false
	}
	r.overlay[effectID] = overlayRegistration{spec: spec, builder: builder}
	return true
}

// RegisterSubtitle registers builder under effectID, with the same
// priority rule as RegisterOverlay.
func (r *Registry) RegisterSubtitle(effectID string, spec PluginSpec, builder SubtitleBuilder) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.subtitle[effectID]
	if ok && existing.spec.Source >= spec.Source {
		r.log.Warn("plugin %s: subtitle effect %q already provided by %s, ignoring",
			spec.PluginID, effectID, existing.spec.PluginID)
		return false
	}
	r.subtitle[effectID] = subtitleRegistration{spec: spec, builder: builder}
	return true
}

// RegisterAlias points alias at canonical effectID, subject to the same
// priority rule against any existing registration of alias.
func (r *Registry) RegisterAlias(alias, canonical string, spec PluginSpec) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.overlay[alias]; ok && existing.spec.Source >= spec.Source {
		return false
	}
	r.aliases[alias] = canonical
	return true
}

func (r *Registry) resolveOverlay(effectID string) (overlayRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if canonical, ok := r.aliases[effectID]; ok {
		effectID = canonical
	}
	reg, ok := r.overlay[effectID]
	return reg, ok
}

func (r *Registry) resolveSubtitle(effectID string) (subtitleRegistration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if canonical, ok := r.aliases[effectID]; ok {
		effectID = canonical
	}
	reg, ok := r.subtitle[effectID]
	return reg, ok
}

// clipDurationKey is the params key filtergraph injects with the current
// clip's duration, since envelope-based effects (shake, bob, sway) scale
// their amplitude over clip length but author-supplied effect params never
// carry it (duration is a render-time fact, not a screenplay fact).
const clipDurationKey = "_clip_duration"

// ResolveOverlayEffects looks up each effect's canonical builder and
// invokes it with the effect's params (plus the clip's duration under
// clipDurationKey), concatenating the resulting filter fragments in input
// order. A builder error is logged and that effect is skipped rather than
// aborting the whole list.
func (r *Registry) ResolveOverlayEffects(effects []config.Effect, clipDuration float64) []string {
	var frags []string
	for _, e := range effects {
		reg, ok := r.resolveOverlay(e.Type)
		if !ok {
			r.log.Warn("effect %q: no registered builder, skipping", e.Type)
			continue
		}
		params := make(map[string]interface{}, len(e.Params)+1)
		for k, v := range e.Params {
			params[k] = v
		}
		params[clipDurationKey] = clipDuration
		frag, err := invokeOverlay(reg.builder, params)
		if err != nil {
			r.log.Warn("effect %q: builder failed: %v, skipping", e.Type, err)
			continue
		}
		if frag != "" {
			frags = append(frags, frag)
		}
	}
	return frags
}

// invokeOverlay calls builder, converting a panic (a misbehaving
// third-party-style builder) into an error so one bad plugin cannot take
// down the render.
func invokeOverlay(builder OverlayBuilder, params map[string]interface{}) (frag string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return builder(params)
}

// ResolveSubtitleEffect looks up effect's canonical subtitle builder and
// invokes it with ctx and the effect's params. Unlike overlay effects,
// subtitle effects are applied one at a time by the caller (each rewrites
// ctx.BaseY or injects filters against the current state), so this
// returns a single fragment rather than a concatenated list; ok is false
// if effect has no registered builder.
func (r *Registry) ResolveSubtitleEffect(effect config.Effect, ctx SubtitleContext) (frag string, ok bool) {
	reg, found := r.resolveSubtitle(effect.Type)
	if !found {
		r.log.Warn("subtitle effect %q: no registered builder, skipping", effect.Type)
		return "", false
	}
	frag, err := invokeSubtitle(reg.builder, ctx, effect.Params)
	if err != nil {
		r.log.Warn("subtitle effect %q: builder failed: %v, skipping", effect.Type, err)
		return "", false
	}
	return frag, true
}

// invokeSubtitle calls builder, converting a panic into an error the same
// way invokeOverlay does.
func invokeSubtitle(builder SubtitleBuilder, ctx SubtitleContext, params map[string]interface{}) (frag string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return builder(ctx, params)
}
