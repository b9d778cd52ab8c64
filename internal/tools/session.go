package tools

import (
	"context"

	"pulseboard/internal/llm"
	"pulseboard/internal/session"
	"pulseboard/internal/weather"
)

// WeatherLookup is the slice of the weather client the weather tool needs.
type WeatherLookup interface {
	GeocodeCity(ctx context.Context, city string) (lat, lon float64, err error)
	Current(ctx context.Context, lat, lon float64) (weather.Report, error)
}

// Session is the per-request context tools build against: which
// conversation is asking, its uploaded documents, and the collaborators
// some tools call back into.
type Session struct {
	ConversationID string
	Docs           *session.DocStore
	LLM            llm.Client
	Weather        WeatherLookup

	// Reply is the natural-language text the model paired with the tool
	// call, used as the chat companion when the tool itself has none.
	Reply string
}
