package tools

import (
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strings"
	"unicode/utf8"

	"pulseboard/internal/widget"
)

const (
	maxChartValue = 1e12
	maxLabelLen   = 80

	fallbackVideoURL = "https://sample-videos.com/video321/mp4/720/big_buck_bunny_720p_1mb.mp4"
)

var pinPalette = []string{"red", "blue", "green", "orange", "purple"}

// SanitizeChartPoints drops points with non-finite values, clips the rest
// into a sane magnitude, and truncates oversized labels.
func SanitizeChartPoints(points []widget.ChartPoint) []widget.ChartPoint {
	out := make([]widget.ChartPoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		if p.Value > maxChartValue {
			p.Value = maxChartValue
		} else if p.Value < -maxChartValue {
			p.Value = -maxChartValue
		}
		p.Label = truncateLabel(p.Label)
		out = append(out, p)
	}
	return out
}

// FilterLocations keeps pins with finite in-range coordinates and gives
// each surviving pin a palette color so neighbours stay distinguishable.
func FilterLocations(pins []widget.MapPin) []widget.MapPin {
	out := make([]widget.MapPin, 0, len(pins))
	for _, p := range pins {
		lat, lon := p.Coordinates[0], p.Coordinates[1]
		if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
			continue
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			continue
		}
		p.Color = pinPalette[len(out)%len(pinPalette)]
		out = append(out, p)
	}
	return out
}

// EnsureHTTPSMP4 returns src unchanged when it is a playable https mp4,
// otherwise a known-good sample clip.
func EnsureHTTPSMP4(src string) string {
	if widget.IsHTTPSURL(src) && strings.HasSuffix(strings.ToLower(src), ".mp4") {
		return src
	}
	return fallbackVideoURL
}

// ImageURL builds a deterministic-per-prompt placeholder image URL with a
// random suffix so repeated prompts vary.
func ImageURL(prompt string) string {
	seed := fmt.Sprintf("%s-%d", prompt, rand.Intn(1000))
	return fmt.Sprintf("https://picsum.photos/seed/%s/800/600", url.PathEscape(seed))
}

// truncateLabel cuts on a rune boundary so a multibyte label never ships
// as invalid UTF-8.
func truncateLabel(s string) string {
	if len(s) <= maxLabelLen {
		return s
	}
	cut := maxLabelLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
