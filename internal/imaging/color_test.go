package imaging

import (
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}},
		{"00ff00", color.NRGBA{0, 255, 0, 255}},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if err != nil {
			t.Fatalf("ParseHexColor(%q) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHexColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#GGGGGG", "1234567"} {
		if _, err := ParseHexColor(in); err == nil {
			t.Errorf("ParseHexColor(%q) expected error", in)
		}
	}
}

func TestTint_Endpoints(t *testing.T) {
	white := color.White
	red := color.NRGBA{200, 0, 0, 255}

	if got := Tint(white, red, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("Tint(t=0) = %v, want white", got)
	}
	if got := Tint(white, red, 1); got != red {
		t.Errorf("Tint(t=1) = %v, want %v", got, red)
	}
}

func TestTint_Midway(t *testing.T) {
	got := Tint(color.White, color.NRGBA{0, 0, 200, 255}, 0.5)
	if got.B <= got.R {
		t.Errorf("half tint toward blue should be bluish, got %v", got)
	}
	if got.R == 255 && got.G == 255 {
		t.Errorf("half tint should differ from white, got %v", got)
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.NRGBA{255, 16, 0, 255}); got != "#ff1000" {
		t.Errorf("Hex = %q, want #ff1000", got)
	}
}
