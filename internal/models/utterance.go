package models

import (
	"fmt"
	"net/url"
)

// Coordinates is a WGS84 position reported by the client.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lng)
}

// MapLink renders c into a map URL. base is a URL whose query gets a
// "q=lat,lng" parameter.
func (c Coordinates) MapLink(base string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		u, _ = url.Parse("https://www.google.com/maps")
	}
	q := u.Query()
	q.Set("q", fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng))
	u.RawQuery = q.Encode()
	return u.String()
}

// Utterance is one unit of user input: a voice transcript or a typed message.
type Utterance struct {
	ID       string       `json:"utteranceId,omitempty"`
	UserID   string       `json:"userId,omitempty"`
	Text     string       `json:"text"`
	Location *Coordinates `json:"location,omitempty"`
	ImageURL string       `json:"imageUrl,omitempty"`
}
