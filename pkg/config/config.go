// Package config holds the runtime switches of the annotator. One Config
// value is shared by everything attached to a host, and hosts drive
// their views from several threads, so all access goes through a lock.
package config

import (
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/tracekit/stacklook/internal/errorutil"
	"github.com/tracekit/stacklook/pkg/event"
	"github.com/tracekit/stacklook/pkg/plot"
)

const (
	// DefaultCeiling is the visible-entry count above which drawing is
	// skipped to keep crowded views responsive.
	DefaultCeiling = 10000

	// DefaultSkipOffset hides the topmost frames of every capture, which
	// belong to the capture machinery rather than the task.
	DefaultSkipOffset = 3
)

// EventMeta describes how markers behave for one owner event type.
type EventMeta struct {
	// Enabled gates marker drawing for the event type.
	Enabled bool `json:"enabled"`

	// SkipOffset is how many topmost frames a preview skips.
	SkipOffset int `json:"skip_offset"`
}

// environment is the subset of settings seeded from process environment
// variables.
type environment struct {
	Ceiling       int    `env:"STACKLOOK_CEILING" env-default:"10000"`
	UseTaskColors bool   `env:"STACKLOOK_TASK_COLORS" env-default:"false"`
	MarkerColor   string `env:"STACKLOOK_MARKER_COLOR" env-default:"#ffffff"`
	OutlineColor  string `env:"STACKLOOK_OUTLINE_COLOR" env-default:"#000000"`
	SkipOffset    int    `env:"STACKLOOK_SKIP_OFFSET" env-default:"3"`
}

type Config struct {
	mu            sync.RWMutex
	ceiling       int
	useTaskColors bool
	markerColor   plot.Color
	outlineColor  plot.Color
	events        map[event.Name]EventMeta
}

// Default returns the stock configuration: markers on both sched events,
// the capture machinery frames skipped, white markers outlined in black.
func Default() *Config {
	c := Config{
		ceiling:      DefaultCeiling,
		markerColor:  plot.White,
		outlineColor: plot.Black,
		events:       make(map[event.Name]EventMeta),
	}
	for _, name := range event.Owners() {
		c.events[name] = EventMeta{Enabled: true, SkipOffset: DefaultSkipOffset}
	}
	return &c
}

// Load builds a configuration from the process environment, with the
// stock values filling anything unset.
func Load() (*Config, error) {
	var env environment
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	if env.Ceiling < 0 {
		return nil, errors.Wrapf(errorutil.ErrInvalidConfig, "ceiling %d is negative", env.Ceiling)
	}
	if env.SkipOffset < 0 {
		return nil, errors.Wrapf(errorutil.ErrInvalidConfig, "skip offset %d is negative", env.SkipOffset)
	}
	marker, err := plot.ParseColor(env.MarkerColor)
	if err != nil {
		return nil, err
	}
	outline, err := plot.ParseColor(env.OutlineColor)
	if err != nil {
		return nil, err
	}
	c := Config{
		ceiling:       env.Ceiling,
		useTaskColors: env.UseTaskColors,
		markerColor:   marker,
		outlineColor:  outline,
		events:        make(map[event.Name]EventMeta),
	}
	for _, name := range event.Owners() {
		c.events[name] = EventMeta{Enabled: true, SkipOffset: env.SkipOffset}
	}
	return &c, nil
}

// Ceiling returns the visible-entry count above which drawing is
// skipped.
func (c *Config) Ceiling() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ceiling
}

// UseTaskColors reports whether markers take the color of their task
// instead of the fixed marker color.
func (c *Config) UseTaskColors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.useTaskColors
}

func (c *Config) MarkerColor() plot.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.markerColor
}

func (c *Config) OutlineColor() plot.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outlineColor
}

// Meta returns the marker behavior for an event type. Unknown event
// types come back disabled with no frames skipped.
func (c *Config) Meta(name event.Name) (EventMeta, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meta, ok := c.events[name]
	return meta, ok
}

// Enabled reports whether markers are drawn for the event type.
func (c *Config) Enabled(name event.Name) bool {
	meta, _ := c.Meta(name)
	return meta.Enabled
}

// SkipOffset returns how many topmost frames previews skip for the
// event type.
func (c *Config) SkipOffset(name event.Name) int {
	meta, _ := c.Meta(name)
	return meta.SkipOffset
}

// Names returns the configured event types in stable order.
func (c *Config) Names() []event.Name {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := maps.Keys(c.events)
	slices.Sort(names)
	return names
}

// Snapshot is a plain copy of the configuration, the unit a settings
// dialog edits and applies back.
type Snapshot struct {
	Ceiling       int                      `json:"ceiling"`
	UseTaskColors bool                     `json:"use_task_colors"`
	MarkerColor   plot.Color               `json:"marker_color"`
	OutlineColor  plot.Color               `json:"outline_color"`
	Events        map[event.Name]EventMeta `json:"events"`
}

func (c *Config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	events := make(map[event.Name]EventMeta, len(c.events))
	maps.Copy(events, c.events)
	return Snapshot{
		Ceiling:       c.ceiling,
		UseTaskColors: c.useTaskColors,
		MarkerColor:   c.markerColor,
		OutlineColor:  c.outlineColor,
		Events:        events,
	}
}

// Apply validates the snapshot and swaps it in atomically; on error the
// configuration is left untouched. The set of known event types is
// fixed, so the snapshot may update their behavior but not invent new
// ones.
func (c *Config) Apply(s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.Ceiling < 0 {
		return errors.Wrapf(errorutil.ErrInvalidConfig, "ceiling %d is negative", s.Ceiling)
	}
	for name, meta := range s.Events {
		if _, ok := c.events[name]; !ok {
			return errors.Wrapf(errorutil.ErrInvalidConfig, "unknown event type %q", name)
		}
		if meta.SkipOffset < 0 {
			return errors.Wrapf(errorutil.ErrInvalidConfig, "skip offset %d for %q is negative", meta.SkipOffset, name)
		}
	}
	c.ceiling = s.Ceiling
	c.useTaskColors = s.UseTaskColors
	c.markerColor = s.MarkerColor
	c.outlineColor = s.OutlineColor
	for name, meta := range s.Events {
		c.events[name] = meta
	}
	return nil
}
