package widget

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates the widget union. Exactly one payload shape is valid
// per kind; Validate rejects any record that mixes variants.
type Kind string

const (
	KindLine     Kind = "line"
	KindBar      Kind = "bar"
	KindPie      Kind = "pie"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindMap      Kind = "map"
	KindWeather  Kind = "weather"
	KindDocument Kind = "document"
	KindCamera   Kind = "camera"
	KindChat     Kind = "chat"
	KindError    Kind = "error"
)

// Error codes surfaced in error-widget payloads. This is the whole
// vocabulary; handlers map them onto HTTP statuses.
const (
	CodeMissingID          = "MISSING_ID"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeDocNotFound        = "DOC_NOT_FOUND"
	CodeMapTooFewLocations = "MAP_TOO_FEW_LOCATIONS"
	CodeUnsupportedFn      = "UNSUPPORTED_FN"
	CodeServerError        = "SERVER_ERROR"
)

// Layout is the grid placement handed to the client renderer.
type Layout struct {
	I    string `json:"i"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW int    `json:"minW,omitempty"`
	MinH int    `json:"minH,omitempty"`
}

// Payload is implemented by every variant payload struct.
type Payload interface {
	isPayload()
}

// ChartPoint is one label/value pair of a chart series.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// CompareEntry is one side of a compare-mode chart.
type CompareEntry struct {
	Source string       `json:"source"`
	Data   []ChartPoint `json:"data"`
}

// ChartPayload backs the line, bar and pie kinds.
type ChartPayload struct {
	Title       string         `json:"title"`
	Data        []ChartPoint   `json:"data"`
	Source      string         `json:"source,omitempty"`
	CompareData []CompareEntry `json:"compareData,omitempty"`
	Loading     bool           `json:"loading,omitempty"`
}

// MapPin is a named location on a map widget. Coordinates are [lat, lon].
type MapPin struct {
	Name        string     `json:"name"`
	Coordinates [2]float64 `json:"coordinates"`
	Color       string     `json:"color,omitempty"`
}

type MapPayload struct {
	Title   string   `json:"title"`
	Data    []MapPin `json:"data"`
	Loading bool     `json:"loading,omitempty"`
}

// MediaPayload backs both image and video widgets.
type MediaPayload struct {
	Src     string `json:"src"`
	Title   string `json:"title"`
	Loading bool   `json:"loading,omitempty"`
}

type CameraPayload struct {
	StreamURL string `json:"streamUrl"`
	Title     string `json:"title"`
}

// TempRange carries current/min/max temperatures in degrees Celsius.
type TempRange struct {
	Current float64 `json:"current"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type WeatherPayload struct {
	Location    string      `json:"location,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Description string      `json:"description,omitempty"`
	Icon        string      `json:"icon,omitempty"`
	Temp        *TempRange  `json:"temp,omitempty"`
	Loading     bool        `json:"loading,omitempty"`
}

type DocumentPayload struct {
	Filename string           `json:"filename"`
	Fields   []string         `json:"fields,omitempty"`
	RowCount int              `json:"rowCount,omitempty"`
	Preview  []map[string]any `json:"preview,omitempty"`
	Summary  string           `json:"summary,omitempty"`
	Loading  bool             `json:"loading,omitempty"`
}

type ChatPayload struct {
	Reply string `json:"reply"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (ChartPayload) isPayload()    {}
func (MapPayload) isPayload()      {}
func (MediaPayload) isPayload()    {}
func (CameraPayload) isPayload()   {}
func (WeatherPayload) isPayload()  {}
func (DocumentPayload) isPayload() {}
func (ChatPayload) isPayload()     {}
func (ErrorPayload) isPayload()    {}

// Widget is one validated dashboard record. Immutable after creation.
type Widget struct {
	ID      string  `json:"id"`
	Type    Kind    `json:"type"`
	Layout  Layout  `json:"layout"`
	Update  bool    `json:"update,omitempty"`
	Payload Payload `json:"payload"`
}

// MakeID returns a widget id unique within a session, prefixed by kind.
func MakeID(kind Kind) string {
	return fmt.Sprintf("%s-%s", kind, strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// NewError builds the uniform error widget used at every failure boundary.
func NewError(message, code string) Widget {
	id := MakeID(KindError)
	return Widget{
		ID:      id,
		Type:    KindError,
		Layout:  Layout{I: id, X: 0, Y: 0, W: 4, H: 3},
		Payload: ErrorPayload{Message: message, Code: code},
	}
}

// NewChat wraps a natural-language reply into a chat widget.
func NewChat(reply string) Widget {
	id := MakeID(KindChat)
	return Widget{
		ID:      id,
		Type:    KindChat,
		Layout:  Layout{I: id, X: 0, Y: 0, W: 4, H: 3},
		Payload: ChatPayload{Reply: reply},
	}
}
