package widget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
)

// ValidationError reports why a candidate failed schema validation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "widget: " + e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

var chartKinds = map[Kind]bool{KindLine: true, KindBar: true, KindPie: true}

// Validate checks a constructed record against its variant contract.
// Model output is untrusted input; every widget passes through here exactly
// once before it crosses the external interface.
func Validate(w Widget) error {
	if strings.TrimSpace(w.ID) == "" {
		return invalid("id is required")
	}
	if w.Layout.I == "" {
		return invalid("layout.i is required")
	}
	if w.Layout.W <= 0 || w.Layout.H <= 0 {
		return invalid("layout w/h must be positive")
	}
	switch {
	case chartKinds[w.Type]:
		p, ok := w.Payload.(ChartPayload)
		if !ok {
			return invalid("%s widget carries %T payload", w.Type, w.Payload)
		}
		return validateChart(p)
	case w.Type == KindMap:
		p, ok := w.Payload.(MapPayload)
		if !ok {
			return invalid("map widget carries %T payload", w.Payload)
		}
		return validateMap(p)
	case w.Type == KindImage, w.Type == KindVideo:
		p, ok := w.Payload.(MediaPayload)
		if !ok {
			return invalid("%s widget carries %T payload", w.Type, w.Payload)
		}
		return validateMedia(w.Type, p)
	case w.Type == KindCamera:
		p, ok := w.Payload.(CameraPayload)
		if !ok {
			return invalid("camera widget carries %T payload", w.Payload)
		}
		if strings.TrimSpace(p.StreamURL) == "" {
			return invalid("camera streamUrl is required")
		}
		return nil
	case w.Type == KindWeather:
		p, ok := w.Payload.(WeatherPayload)
		if !ok {
			return invalid("weather widget carries %T payload", w.Payload)
		}
		return validateWeather(p)
	case w.Type == KindDocument:
		p, ok := w.Payload.(DocumentPayload)
		if !ok {
			return invalid("document widget carries %T payload", w.Payload)
		}
		if strings.TrimSpace(p.Filename) == "" {
			return invalid("document filename is required")
		}
		return nil
	case w.Type == KindChat:
		p, ok := w.Payload.(ChatPayload)
		if !ok {
			return invalid("chat widget carries %T payload", w.Payload)
		}
		if p.Reply == "" {
			return invalid("chat reply is required")
		}
		return nil
	case w.Type == KindError:
		p, ok := w.Payload.(ErrorPayload)
		if !ok {
			return invalid("error widget carries %T payload", w.Payload)
		}
		if p.Message == "" {
			return invalid("error message is required")
		}
		return nil
	default:
		return invalid("unknown widget type %q", w.Type)
	}
}

func validateChart(p ChartPayload) error {
	switch p.Source {
	case "", "document", "gemini":
	default:
		return invalid("chart source %q is not document|gemini", p.Source)
	}
	if err := validateSeries(p.Data); err != nil {
		return err
	}
	for _, entry := range p.CompareData {
		if entry.Source != "document" && entry.Source != "gemini" {
			return invalid("compare entry source %q is not document|gemini", entry.Source)
		}
		if err := validateSeries(entry.Data); err != nil {
			return err
		}
	}
	return nil
}

func validateSeries(data []ChartPoint) error {
	for _, d := range data {
		if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
			return invalid("chart value for %q is not finite", d.Label)
		}
	}
	return nil
}

func validateMap(p MapPayload) error {
	if len(p.Data) < 2 {
		return invalid("map needs at least 2 locations, got %d", len(p.Data))
	}
	for _, pin := range p.Data {
		lat, lon := pin.Coordinates[0], pin.Coordinates[1]
		if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return invalid("location %q has out-of-range coordinates", pin.Name)
		}
	}
	return nil
}

func validateMedia(kind Kind, p MediaPayload) error {
	if !IsHTTPSURL(p.Src) {
		return invalid("%s src must be an https URL", kind)
	}
	if kind == KindVideo && !strings.HasSuffix(strings.ToLower(mustPath(p.Src)), ".mp4") {
		return invalid("video src must end in .mp4")
	}
	return nil
}

func validateWeather(p WeatherPayload) error {
	if !p.Coordinates.Current {
		lat, lon := p.Coordinates.LatLon[0], p.Coordinates.LatLon[1]
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return invalid("weather coordinates out of range")
		}
	}
	if t := p.Temp; t != nil {
		for _, v := range []float64{t.Current, t.Min, t.Max} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return invalid("weather temperature is not finite")
			}
		}
	}
	return nil
}

// IsHTTPSURL reports whether raw parses as an absolute https:// URL.
func IsHTTPSURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme == "https" && u.Host != ""
}

func mustPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

// Parse decodes untrusted bytes into a validated Widget. The decode is
// strict: unknown fields and cross-variant payloads are rejected.
func Parse(raw []byte) (Widget, error) {
	var w Widget
	if err := w.UnmarshalJSON(raw); err != nil {
		return Widget{}, err
	}
	if err := Validate(w); err != nil {
		return Widget{}, err
	}
	return w, nil
}

type widgetEnvelope struct {
	ID      string          `json:"id"`
	Type    Kind            `json:"type"`
	Layout  Layout          `json:"layout"`
	Update  bool            `json:"update,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

func (w *Widget) UnmarshalJSON(raw []byte) error {
	var env widgetEnvelope
	if err := strictDecode(raw, &env); err != nil {
		return invalid("malformed widget envelope: %v", err)
	}
	payload, err := decodePayload(env.Type, env.Payload)
	if err != nil {
		return err
	}
	*w = Widget{ID: env.ID, Type: env.Type, Layout: env.Layout, Update: env.Update, Payload: payload}
	return nil
}

func decodePayload(kind Kind, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 {
		return nil, invalid("payload is required")
	}
	switch {
	case chartKinds[kind]:
		var p ChartPayload
		return p, strictPayload(kind, raw, &p)
	case kind == KindMap:
		var p MapPayload
		return p, strictPayload(kind, raw, &p)
	case kind == KindImage, kind == KindVideo:
		var p MediaPayload
		return p, strictPayload(kind, raw, &p)
	case kind == KindCamera:
		var p CameraPayload
		return p, strictPayload(kind, raw, &p)
	case kind == KindWeather:
		var p WeatherPayload
		return p, strictPayload(kind, raw, &p)
	case kind == KindDocument:
		var p DocumentPayload
		return p, strictPayload(kind, raw, &p)
	case kind == KindChat:
		var p ChatPayload
		return p, strictPayload(kind, raw, &p)
	case kind == KindError:
		var p ErrorPayload
		return p, strictPayload(kind, raw, &p)
	default:
		return nil, invalid("unknown widget type %q", kind)
	}
}

func strictPayload(kind Kind, raw json.RawMessage, v any) error {
	if err := strictDecode(raw, v); err != nil {
		return invalid("%s payload: %v", kind, err)
	}
	return nil
}

func strictDecode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
