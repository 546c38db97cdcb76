package viewer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"
)

// Settings are compiled into the program; see assets/settings.yaml.
type Settings struct {
	Title        string  `yaml:"title"`
	Window       Size    `yaml:"window"`
	Scale        float64 `yaml:"scale"`
	Offset       Point   `yaml:"offset"`
	Background   Color   `yaml:"background"`
	Tint         Color   `yaml:"tint"`
	Interpolator string  `yaml:"interpolator"`
}

// Size is a window size, in device independent pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Point is a screen position.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (p Point) image() image.Point { return image.Pt(p.X, p.Y) }

// Color is an opaque or translucent colour, written
// as #rgb, #rrggbb or #rrggbbaa.
type Color color.NRGBA

func (c Color) RGBA() (r, g, b, a uint32) { return color.NRGBA(c).RGBA() }

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*c = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Color) MarshalYAML() (interface{}, error) { return c.String(), nil }

// ParseColor parses a hexadecimal colour.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

var interpolators = map[string]draw.Interpolator{
	"nearest":         draw.NearestNeighbor,
	"approx-bilinear": draw.ApproxBiLinear,
	"bilinear":        draw.BiLinear,
	"catmull-rom":     draw.CatmullRom,
}

// Interp returns the resampling kernel named by the settings.
func (s Settings) Interp() draw.Interpolator {
	if interp, ok := interpolators[s.Interpolator]; ok {
		return interp
	}
	return draw.BiLinear
}

// DefaultSettings returns the values shipped in assets/settings.yaml.
func DefaultSettings() Settings {
	return Settings{
		Title:        "svgview",
		Window:       Size{Width: 640, Height: 480},
		Scale:        0.1,
		Offset:       Point{X: 100, Y: 100},
		Background:   Color{R: 0xd3, G: 0xd3, B: 0xd3, A: 0xff},
		Tint:         Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		Interpolator: "bilinear",
	}
}

// ParseSettings decodes YAML settings on top of DefaultSettings.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("viewer: decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	var errs []error
	if !(s.Scale > 0) || math.IsInf(s.Scale, 0) {
		errs = append(errs, fmt.Errorf("scale must be positive, got %g", s.Scale))
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", s.Window.Width, s.Window.Height))
	}
	if _, ok := interpolators[s.Interpolator]; !ok {
		errs = append(errs, fmt.Errorf("unknown interpolator %q", s.Interpolator))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("viewer: invalid settings: %w", err)
	}
	return nil
}
