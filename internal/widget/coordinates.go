package widget

import (
	"encoding/json"
	"errors"
)

// Coordinates is either an explicit [lat, lon] pair or the literal string
// "current", meaning the client should resolve its own position.
type Coordinates struct {
	Current bool
	LatLon  [2]float64
}

// CurrentLocation is the "resolve on the client" coordinate value.
func CurrentLocation() Coordinates { return Coordinates{Current: true} }

// At returns explicit coordinates.
func At(lat, lon float64) Coordinates { return Coordinates{LatLon: [2]float64{lat, lon}} }

func (c Coordinates) MarshalJSON() ([]byte, error) {
	if c.Current {
		return json.Marshal("current")
	}
	return json.Marshal(c.LatLon)
}

func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "current" {
			return errors.New(`widget: coordinates string must be "current"`)
		}
		*c = Coordinates{Current: true}
		return nil
	}
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	*c = Coordinates{LatLon: pair}
	return nil
}
