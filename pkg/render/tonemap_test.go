package render

import "testing"

func TestParseToneMapping(t *testing.T) {
	for _, mode := range []ToneMapping{ToneMappingNone, ToneMappingLinear, ToneMappingReinhard, ToneMappingACESFilmic} {
		got, err := ParseToneMapping(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseToneMapping(%q) = %v, %v", mode.String(), got, err)
		}
	}
	if got, err := ParseToneMapping("ACES"); err != nil || got != ToneMappingACESFilmic {
		t.Errorf("case insensitive parse = %v, %v", got, err)
	}
	if _, err := ParseToneMapping("filmic"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestToneMapperApply(t *testing.T) {
	var nilMapper *ToneMapper
	if got := nilMapper.Apply(RGB(1, 2, 3)); got != RGB(1, 2, 3) {
		t.Errorf("nil mapper changed color: %v", got)
	}

	none := NewToneMapper(ToneMappingNone, 4)
	if got := none.Apply(RGB(10, 128, 250)); got != RGB(10, 128, 250) {
		t.Errorf("none mapper changed color: %v", got)
	}

	linear := NewToneMapper(ToneMappingLinear, 1)
	if got := linear.Apply(RGBA(0, 128, 255, 7)); got != RGBA(0, 128, 255, 7) {
		t.Errorf("linear exposure 1 = %v, want identity", got)
	}

	bright := NewToneMapper(ToneMappingLinear, 4)
	if got := bright.Apply(RGB(200, 200, 200)); got != RGB(255, 255, 255) {
		t.Errorf("overexposed linear = %v, want clamped white", got)
	}

	for _, mode := range []ToneMapping{ToneMappingReinhard, ToneMappingACESFilmic} {
		tm := NewToneMapper(mode, 1)
		prev := -1
		for i := range 256 {
			v := int(tm.Apply(RGB(uint8(i), 0, 0)).R)
			if v < prev {
				t.Errorf("%v is not monotone at %d", mode, i)
				break
			}
			prev = v
		}
		if got := tm.Apply(RGB(0, 0, 0)); got != RGB(0, 0, 0) {
			t.Errorf("%v black = %v", mode, got)
		}
	}
}
