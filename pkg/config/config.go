// Package config loads viewer settings from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/plinth/pkg/math3d"
	"github.com/taigrr/plinth/pkg/render"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid config")

// Config is the full viewer configuration.
type Config struct {
	FPS         int            `yaml:"fps"`
	Background  string         `yaml:"background"` // hex, e.g. "#f0f0f0"
	Camera      CameraConfig   `yaml:"camera"`
	Controls    ControlsConfig `yaml:"controls"`
	Light       LightConfig    `yaml:"light"`
	ToneMapping string         `yaml:"tone_mapping"` // none, linear, reinhard, aces
	Exposure    float64        `yaml:"exposure"`
	ModelSize   float64        `yaml:"model_size"` // largest model dimension after normalizing
	Shadow      ShadowConfig   `yaml:"shadow"`
	Grid        bool           `yaml:"grid"`
}

// CameraConfig sets up the perspective camera.
type CameraConfig struct {
	FOV      float64    `yaml:"fov"` // vertical, degrees
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Position [3]float64 `yaml:"position"`
}

// ControlsConfig tunes the orbit controls.
type ControlsConfig struct {
	MinDistance float64 `yaml:"min_distance"`
	MaxDistance float64 `yaml:"max_distance"`
	// Damping is the angular frequency of the spring that brings orbit
	// motion to rest. Higher stops sooner.
	Damping     float64 `yaml:"damping"`
	RotateSpeed float64 `yaml:"rotate_speed"` // radians per unit of input
	ZoomSpeed   float64 `yaml:"zoom_speed"`   // fraction of distance per unit of input
}

// LightConfig is the directional light.
type LightConfig struct {
	Direction [3]float64 `yaml:"direction"` // toward the light
	Ambient   float64    `yaml:"ambient"`
	Diffuse   float64    `yaml:"diffuse"`
}

// ShadowConfig places the contact shadow.
type ShadowConfig struct {
	Enabled bool    `yaml:"enabled"`
	Scale   float64 `yaml:"scale"`
	Offset  float64 `yaml:"offset"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		FPS:        30,
		Background: "#f0f0f0",
		// A narrow lens looking down the (1, 1, 2) diagonal, backed off
		// until a normalized model's bounding sphere fills the height.
		Camera: CameraConfig{
			FOV:      12,
			Near:     0.25,
			Far:      1000,
			Position: [3]float64{6.8, 6.8, 13.6},
		},
		Controls: ControlsConfig{
			MinDistance: 0.1,
			MaxDistance: 100,
			Damping:     4,
			RotateSpeed: 0.05,
			ZoomSpeed:   0.1,
		},
		Light: LightConfig{
			Direction: [3]float64{0.5, 1, 0.8},
			Ambient:   0.3,
			Diffuse:   0.7,
		},
		ToneMapping: "aces",
		Exposure:    1,
		ModelSize:   2,
		Shadow: ShadowConfig{
			Enabled: true,
			Scale:   1.5,
			Offset:  0.001,
		},
	}
}

// Load reads path and overlays it on Default. Fields missing from the file
// keep their default values. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

// Validate reports the first field that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.FPS <= 0 || c.FPS > 240:
		return invalid("fps", "%d is outside 1..240", c.FPS)
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return invalid("camera.fov", "%g is outside (0, 180)", c.Camera.FOV)
	case c.Camera.Near <= 0:
		return invalid("camera.near", "must be positive")
	case c.Camera.Far <= c.Camera.Near:
		return invalid("camera.far", "%g must exceed near %g", c.Camera.Far, c.Camera.Near)
	case c.Controls.MinDistance <= 0:
		return invalid("controls.min_distance", "must be positive")
	case c.Controls.MaxDistance < c.Controls.MinDistance:
		return invalid("controls.max_distance", "%g is below min_distance %g", c.Controls.MaxDistance, c.Controls.MinDistance)
	case c.Controls.Damping <= 0:
		return invalid("controls.damping", "must be positive")
	case c.Light.Ambient < 0 || c.Light.Diffuse < 0:
		return invalid("light", "ambient and diffuse must not be negative")
	case c.Exposure <= 0:
		return invalid("exposure", "must be positive")
	case c.ModelSize <= 0:
		return invalid("model_size", "must be positive")
	case c.Shadow.Scale <= 0:
		return invalid("shadow.scale", "must be positive")
	}

	if math3d.V3(c.Light.Direction[0], c.Light.Direction[1], c.Light.Direction[2]).LenSq() == 0 {
		return invalid("light.direction", "must not be zero")
	}
	if _, err := c.BackgroundColor(); err != nil {
		return invalid("background", "%v", err)
	}
	if _, err := c.ToneMappingMode(); err != nil {
		return invalid("tone_mapping", "%v", err)
	}
	return nil
}

// BackgroundColor parses Background.
func (c Config) BackgroundColor() (render.Color, error) {
	col, err := colorful.Hex(c.Background)
	if err != nil {
		return render.Color{}, err
	}
	r, g, b := col.RGB255()
	return render.RGB(r, g, b), nil
}

// ToneMappingMode parses ToneMapping.
func (c Config) ToneMappingMode() (render.ToneMapping, error) {
	return render.ParseToneMapping(c.ToneMapping)
}

// Lighting converts Light.
func (c Config) Lighting() render.Lighting {
	d := c.Light.Direction
	return render.Lighting{
		Direction: math3d.V3(d[0], d[1], d[2]).Normalize(),
		Ambient:   c.Light.Ambient,
		Diffuse:   c.Light.Diffuse,
	}
}

// CameraPosition returns Camera.Position as a vector.
func (c Config) CameraPosition() math3d.Vec3 {
	p := c.Camera.Position
	return math3d.V3(p[0], p[1], p[2])
}

// FOVRadians returns the vertical field of view in radians.
func (c Config) FOVRadians() float64 {
	return c.Camera.FOV * math.Pi / 180
}
