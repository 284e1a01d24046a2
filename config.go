package canopy

import (
	"reflect"
	"strconv"
)

// Setting names looked up by LoadWindowConfig.
const (
	SettingScreenWidth  = "ScreenWidth"
	SettingScreenHeight = "ScreenHeight"
	SettingTitle        = "Title"
	SettingFrameRate    = "FrameRate"
	SettingVsync        = "Vsync"
)

// Window configuration defaults and limits.
const (
	DefaultWidth     = 640
	DefaultHeight    = 480
	DefaultTitle     = "canopy"
	DefaultFrameRate = 60
	DefaultBPP       = 32

	MinWidth     = 160
	MinHeight    = 144
	MinFrameRate = 1
	MaxFrameRate = 120

	// unboundedSize is the size limit used when the platform reports no
	// full-screen mode.
	unboundedSize = 0xFFFFFF
)

// Settings is the read-only configuration source consulted by
// RenderLoop.Start. Lookup reports false for names that are not defined.
type Settings interface {
	Lookup(name string) (any, bool)
}

// MapSettings is a Settings backed by a map.
type MapSettings map[string]any

// Lookup returns the value stored under name.
func (m MapSettings) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// VideoMode describes a full-screen mode offered by the platform.
type VideoMode struct {
	Width, Height int
	BitsPerPixel  int
}

// WindowConfig is the resolved configuration a window is opened with.
type WindowConfig struct {
	Width, Height int
	BitsPerPixel  int
	Title         string
	FrameRate     int
	Vsync         bool
}

// DefaultWindowConfig returns the configuration used when no settings are
// defined.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		BitsPerPixel: DefaultBPP,
		Title:        DefaultTitle,
		FrameRate:    DefaultFrameRate,
		Vsync:        true,
	}
}

// LoadWindowConfig resolves the window configuration from settings. modes is
// the platform's full-screen mode list, largest first; the first entry bounds
// the window size. A nil settings source yields the defaults. Values of the
// wrong type are ignored with a warning.
func LoadWindowConfig(settings Settings, modes []VideoMode) WindowConfig {
	cfg := DefaultWindowConfig()
	maxW, maxH := unboundedSize, unboundedSize
	if len(modes) > 0 {
		maxW, maxH = modes[0].Width, modes[0].Height
		if modes[0].BitsPerPixel > 0 {
			cfg.BitsPerPixel = modes[0].BitsPerPixel
		}
	}
	if settings == nil {
		return cfg
	}
	if v, ok := lookupInt(settings, SettingScreenWidth); ok {
		cfg.Width = clampInt(v, MinWidth, maxW)
	}
	if v, ok := lookupInt(settings, SettingScreenHeight); ok {
		cfg.Height = clampInt(v, MinHeight, maxH)
	}
	if raw, ok := settings.Lookup(SettingTitle); ok {
		if s, isString := raw.(string); isString {
			cfg.Title = s
		} else {
			Logger().Warn("canopy: setting is not a string, using default",
				"setting", SettingTitle, "value", raw, "default", cfg.Title)
		}
	}
	if v, ok := lookupInt(settings, SettingFrameRate); ok {
		cfg.FrameRate = clampInt(v, MinFrameRate, MaxFrameRate)
	}
	if raw, ok := settings.Lookup(SettingVsync); ok {
		cfg.Vsync = truthy(raw)
	}
	return cfg
}

// lookupInt reads an integer setting. Any Go integer or float kind is
// accepted, as are decimal strings.
func lookupInt(settings Settings, name string) (int64, bool) {
	raw, ok := settings.Lookup(name)
	if !ok {
		return 0, false
	}
	v, ok := toInt(raw)
	if !ok {
		Logger().Warn("canopy: setting is not an integer, using default",
			"setting", name, "value", raw)
	}
	return v, ok
}

func toInt(raw any) (int64, bool) {
	if s, ok := raw.(string); ok {
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err == nil
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<62 {
			u = 1 << 62
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), true
	default:
		return 0, false
	}
}

// truthy interprets a setting as a boolean the way script configs do: only
// nil and false are false. 0, "" and "false" all enable.
func truthy(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		return true
	}
}

// clampInt bounds v to [lo, hi] and converts it to int.
func clampInt(v int64, lo, hi int) int {
	if v < int64(lo) {
		return lo
	}
	if v > int64(hi) {
		return hi
	}
	return int(v)
}
