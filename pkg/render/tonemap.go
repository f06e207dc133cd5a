package render

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ToneMapping is the curve applied to lit fragments of tone mapped materials.
type ToneMapping int

const (
	ToneMappingNone ToneMapping = iota
	ToneMappingLinear
	ToneMappingReinhard
	ToneMappingACESFilmic
)

var toneMappingNames = map[ToneMapping]string{
	ToneMappingNone:       "none",
	ToneMappingLinear:     "linear",
	ToneMappingReinhard:   "reinhard",
	ToneMappingACESFilmic: "aces",
}

func (t ToneMapping) String() string {
	if s, ok := toneMappingNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ToneMapping(%d)", int(t))
}

// ParseToneMapping accepts none, linear, reinhard and aces (case insensitive).
func ParseToneMapping(s string) (ToneMapping, error) {
	for t, name := range toneMappingNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return ToneMappingNone, fmt.Errorf("unknown tone mapping %q", s)
}

// ToneMapper applies exposure and a tone curve in linear RGB. The curves
// here are all per channel, so each one is baked into a 256 entry table.
type ToneMapper struct {
	Mode     ToneMapping
	Exposure float64
	lut      [256]uint8
}

// NewToneMapper builds a tone mapper. ToneMappingNone ignores exposure.
func NewToneMapper(mode ToneMapping, exposure float64) *ToneMapper {
	tm := &ToneMapper{Mode: mode, Exposure: exposure}
	for i := range tm.lut {
		v := float64(i) / 255
		c := colorful.Color{R: v, G: v, B: v}
		if mode != ToneMappingNone {
			lr, _, _ := c.LinearRgb()
			x := tm.curve(lr * exposure)
			c = colorful.LinearRgb(x, x, x).Clamped()
		}
		r, _, _ := c.RGB255()
		tm.lut[i] = r
	}
	return tm
}

func (tm *ToneMapper) curve(x float64) float64 {
	switch tm.Mode {
	case ToneMappingReinhard:
		return x / (1 + x)
	case ToneMappingACESFilmic:
		// Narkowicz's fit of the ACES reference rendering transform.
		return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
	default:
		return x
	}
}

// Apply maps the RGB channels of c; alpha passes through. A nil mapper is
// the identity.
func (tm *ToneMapper) Apply(c Color) Color {
	if tm == nil || tm.Mode == ToneMappingNone {
		return c
	}
	return Color{R: tm.lut[c.R], G: tm.lut[c.G], B: tm.lut[c.B], A: c.A}
}
