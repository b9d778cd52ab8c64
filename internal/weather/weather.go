// Package weather looks up current conditions through the OpenWeather API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Report is the narrow contract the widget pipeline consumes.
type Report struct {
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Temp        TempRange  `json:"temp"`
	Coordinates [2]float64 `json:"coordinates"`
}

type TempRange struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type Client struct {
	http    *http.Client
	apiKey  string
	baseURL string
}

func New(apiKey string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
	}
}

// NewWithBaseURL is for tests pointing at a fake server.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = baseURL
	return c
}

// GeocodeCity resolves a city name to coordinates. Unknown cities fail.
func (c *Client) GeocodeCity(ctx context.Context, city string) (lat, lon float64, err error) {
	q := url.Values{"q": {city}, "limit": {"1"}, "appid": {c.apiKey}}
	var out []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := c.getJSON(ctx, "/geo/1.0/direct?"+q.Encode(), &out); err != nil {
		return 0, 0, fmt.Errorf("weather: geocode %q: %w", city, err)
	}
	if len(out) == 0 {
		return 0, 0, fmt.Errorf("weather: no coordinates found for %q", city)
	}
	return out[0].Lat, out[0].Lon, nil
}

// Current fetches current conditions at explicit coordinates.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Report, error) {
	q := url.Values{
		"lat":   {fmt.Sprintf("%g", lat)},
		"lon":   {fmt.Sprintf("%g", lon)},
		"units": {"metric"},
		"appid": {c.apiKey},
	}
	var out struct {
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Main struct {
			Temp    float64 `json:"temp"`
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	}
	if err := c.getJSON(ctx, "/data/2.5/weather?"+q.Encode(), &out); err != nil {
		return Report{}, fmt.Errorf("weather: lookup: %w", err)
	}

	report := Report{
		Description: "unknown",
		Icon:        "01d",
		Temp:        TempRange{Current: out.Main.Temp, Min: out.Main.TempMin, Max: out.Main.TempMax},
		Coordinates: [2]float64{out.Coord.Lat, out.Coord.Lon},
	}
	if len(out.Weather) > 0 {
		report.Description = out.Weather[0].Description
		report.Icon = out.Weather[0].Icon
	}
	return report, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
