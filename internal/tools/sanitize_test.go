package tools

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"pulseboard/internal/widget"
)

func TestSanitizeChartPoints(t *testing.T) {
	in := []widget.ChartPoint{
		{Label: "ok", Value: 10},
		{Label: "nan", Value: math.NaN()},
		{Label: "inf", Value: math.Inf(1)},
		{Label: "big", Value: 5e12},
		{Label: "neg", Value: -5e12},
		{Label: strings.Repeat("x", 200), Value: 1},
	}
	out := SanitizeChartPoints(in)
	if len(out) != 4 {
		t.Fatalf("kept %d points, want 4: %+v", len(out), out)
	}
	if out[1].Value != maxChartValue {
		t.Fatalf("clip high = %v", out[1].Value)
	}
	if out[2].Value != -maxChartValue {
		t.Fatalf("clip low = %v", out[2].Value)
	}
	if len(out[3].Label) != maxLabelLen {
		t.Fatalf("label length = %d", len(out[3].Label))
	}
}

func TestSanitizeChartPoints_MultibyteLabelStaysValidUTF8(t *testing.T) {
	// 3 bytes per rune, so the 80-byte limit falls mid-rune.
	label := strings.Repeat("日", 40)
	out := SanitizeChartPoints([]widget.ChartPoint{{Label: label, Value: 1}})

	got := out[0].Label
	if !utf8.ValidString(got) {
		t.Fatalf("truncated label is not valid UTF-8: %q", got)
	}
	if len(got) > maxLabelLen {
		t.Fatalf("label length = %d", len(got))
	}
	if got != strings.Repeat("日", 26) {
		t.Fatalf("label = %q", got)
	}
}

func TestFilterLocations(t *testing.T) {
	in := []widget.MapPin{
		{Name: "Oslo", Coordinates: [2]float64{59.9, 10.7}},
		{Name: "BadLat", Coordinates: [2]float64{95, 0}},
		{Name: "BadLon", Coordinates: [2]float64{0, 190}},
		{Name: "NaN", Coordinates: [2]float64{math.NaN(), 0}},
		{Name: "Lima", Coordinates: [2]float64{-12.0, -77.0}},
	}
	out := FilterLocations(in)
	if len(out) != 2 {
		t.Fatalf("kept %d pins, want 2: %+v", len(out), out)
	}
	if out[0].Color == "" || out[0].Color == out[1].Color {
		t.Fatalf("colors not distinct: %q vs %q", out[0].Color, out[1].Color)
	}
}

func TestFilterLocations_ColorsCycle(t *testing.T) {
	in := make([]widget.MapPin, 7)
	for i := range in {
		in[i] = widget.MapPin{Name: "p", Coordinates: [2]float64{1, 1}}
	}
	out := FilterLocations(in)
	if out[5].Color != out[0].Color {
		t.Fatalf("palette should wrap after %d pins", len(pinPalette))
	}
}

func TestEnsureHTTPSMP4(t *testing.T) {
	good := "https://example.com/clip.mp4"
	if got := EnsureHTTPSMP4(good); got != good {
		t.Fatalf("valid URL rewritten to %q", got)
	}
	for _, bad := range []string{"", "http://example.com/clip.mp4", "https://example.com/clip.webm", "not a url"} {
		if got := EnsureHTTPSMP4(bad); got != fallbackVideoURL {
			t.Fatalf("EnsureHTTPSMP4(%q) = %q, want fallback", bad, got)
		}
	}
}

func TestImageURL(t *testing.T) {
	u := ImageURL("red pandas")
	if !strings.HasPrefix(u, "https://picsum.photos/seed/") {
		t.Fatalf("url = %q", u)
	}
	if !strings.HasSuffix(u, "/800/600") {
		t.Fatalf("url = %q", u)
	}
	if strings.Contains(u, " ") {
		t.Fatalf("prompt not escaped: %q", u)
	}
}
