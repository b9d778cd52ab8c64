package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type weatherTool struct{}

type weatherArgs struct {
	City string   `json:"city,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

func (t *weatherTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "get_weather",
		Description: "Show current weather for a city, explicit coordinates, or the user's own location.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"city": llm.String("City name, or \"current\" for the user's own location."),
			"lat":  llm.Number("Latitude in degrees, when coordinates are known."),
			"lon":  llm.Number("Longitude in degrees, when coordinates are known."),
		}),
	}
}

func (t *weatherTool) Build(ctx context.Context, raw json.RawMessage, sess *Session) ([]widget.Widget, error) {
	var args weatherArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad get_weather arguments"}
	}

	city := strings.TrimSpace(args.City)
	id := widget.MakeID(widget.KindWeather)
	base := widget.Widget{
		ID:     id,
		Type:   widget.KindWeather,
		Layout: widget.Layout{I: id, W: 4, H: 5},
	}

	// No target at all, or an explicit "current": the client resolves the
	// browser's geolocation and fills the widget in.
	if (city == "" || strings.EqualFold(city, "current")) && (args.Lat == nil || args.Lon == nil) {
		base.Payload = widget.WeatherPayload{
			Coordinates: widget.CurrentLocation(),
			Loading:     true,
		}
		return []widget.Widget{base}, nil
	}

	if sess.Weather == nil {
		return nil, fmt.Errorf("weather lookup is not configured")
	}

	var lat, lon float64
	if args.Lat != nil && args.Lon != nil {
		lat, lon = *args.Lat, *args.Lon
	} else {
		var err error
		lat, lon, err = sess.Weather.GeocodeCity(ctx, city)
		if err != nil {
			return nil, err
		}
	}

	report, err := sess.Weather.Current(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	base.Payload = widget.WeatherPayload{
		Location:    city,
		Coordinates: widget.At(lat, lon),
		Description: report.Description,
		Icon:        report.Icon,
		Temp: &widget.TempRange{
			Current: report.Temp.Current,
			Min:     report.Temp.Min,
			Max:     report.Temp.Max,
		},
	}
	return []widget.Widget{base}, nil
}
