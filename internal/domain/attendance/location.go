package attendance

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Location is the canonical GPS payload. Clients historically sent several
// shapes (structured object, alias keys, "lat,lng" strings); all of them are
// normalized here at the intake boundary and only this type propagates
// further.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"`
}

type looseLocation struct {
	Latitude  *float64 `json:"latitude"`
	Lat       *float64 `json:"lat"`
	Longitude *float64 `json:"longitude"`
	Lng       *float64 `json:"lng"`
	Lon       *float64 `json:"lon"`
	Address   *string  `json:"address"`
}

// UnmarshalJSON accepts either a structured object (with latitude/longitude
// or lat/lng/lon aliases) or a "lat,lng[,address]" string.
func (l *Location) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return l.parseString(s)
	}

	var loose looseLocation
	if err := json.Unmarshal(data, &loose); err != nil {
		return fmt.Errorf("location must be an object or a \"lat,lng\" string: %w", err)
	}

	lat := firstFloat(loose.Latitude, loose.Lat)
	lng := firstFloat(loose.Longitude, loose.Lng, loose.Lon)
	if lat == nil || lng == nil {
		return fmt.Errorf("location object is missing latitude/longitude")
	}

	l.Latitude = *lat
	l.Longitude = *lng
	l.Address = loose.Address
	return nil
}

func (l *Location) parseString(s string) error {
	parts := strings.SplitN(s, ",", 3)
	if len(parts) < 2 {
		return fmt.Errorf("location string %q must be \"lat,lng\" or \"lat,lng,address\"", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return fmt.Errorf("invalid latitude in location string %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return fmt.Errorf("invalid longitude in location string %q", s)
	}

	l.Latitude = lat
	l.Longitude = lng
	if len(parts) == 3 {
		addr := strings.TrimSpace(parts[2])
		if addr != "" {
			l.Address = &addr
		}
	}
	return nil
}

// Valid reports whether the coordinates are within range.
func (l *Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

func firstFloat(candidates ...*float64) *float64 {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
