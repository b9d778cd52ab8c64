package tools

import (
	"context"
	"encoding/json"

	"pulseboard/internal/jsonutil"
	"pulseboard/internal/llm"
	"pulseboard/internal/widget"
)

type mapTool struct{}

type mapLocationArg struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type mapArgs struct {
	Title     string           `json:"title,omitempty"`
	Locations []mapLocationArg `json:"locations"`
}

func (t *mapTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "create_map",
		Description: "Plot two or more named locations on a map.",
		Parameters: llm.Object(map[string]*llm.Schema{
			"title": llm.String("Optional widget title."),
			"locations": llm.Array(llm.Object(map[string]*llm.Schema{
				"name": llm.String("Display name of the location."),
				"lat":  llm.Number("Latitude in degrees."),
				"lon":  llm.Number("Longitude in degrees."),
			}, "name", "lat", "lon")),
		}, "locations"),
	}
}

func (t *mapTool) Build(_ context.Context, raw json.RawMessage, _ *Session) ([]widget.Widget, error) {
	var args mapArgs
	if err := jsonutil.UnmarshalFlex(raw, &args); err != nil {
		return nil, &BuildError{Code: widget.CodeValidationError, Message: "bad create_map arguments"}
	}
	pins := make([]widget.MapPin, 0, len(args.Locations))
	for _, loc := range args.Locations {
		pins = append(pins, widget.MapPin{
			Name:        loc.Name,
			Coordinates: [2]float64{loc.Lat, loc.Lon},
		})
	}
	pins = FilterLocations(pins)
	if len(pins) < 2 {
		return nil, &BuildError{Code: widget.CodeMapTooFewLocations, Message: "map requires at least 2 valid locations"}
	}
	title := args.Title
	if title == "" {
		title = "Map"
	}
	id := widget.MakeID(widget.KindMap)
	return []widget.Widget{{
		ID:     id,
		Type:   widget.KindMap,
		Layout: widget.Layout{I: id, W: 6, H: 6},
		Payload: widget.MapPayload{
			Title: title,
			Data:  pins,
		},
	}}, nil
}
