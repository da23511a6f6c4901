package weather

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultUnits    = "metric"
	DefaultLanguage = "en"
)

// Query is the normalized form of a WeatherDataRequest, ready to be sent upstream.
type Query struct {
	Lat     float64
	Lon     float64
	Exclude []string
	Units   string
	Lang    string
}

// NewQuery applies request defaults. Coordinates are passed through as given.
func NewQuery(req WeatherDataRequest) Query {
	q := Query{
		Lat:     req.Coordinates.Latitude,
		Lon:     req.Coordinates.Longitude,
		Exclude: req.Exclude,
		Units:   req.Units,
		Lang:    req.Language,
	}
	if q.Units == "" {
		q.Units = DefaultUnits
	}
	if q.Lang == "" {
		q.Lang = DefaultLanguage
	}
	return q
}

// Values encodes the query parameters of a single upstream call.
// An empty exclusion list is sent as an empty "exclude" parameter.
func (q Query) Values(apiKey string) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(q.Lon, 'f', -1, 64))
	values.Set("exclude", strings.Join(q.Exclude, ","))
	values.Set("appid", apiKey)
	values.Set("units", q.Units)
	values.Set("lang", q.Lang)
	return values
}
