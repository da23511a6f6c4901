package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// successCode is the "cod" value of a successful upstream document.
const successCode = 200

// upstreamEnvelope holds the error indicator fields of an upstream document.
type upstreamEnvelope struct {
	Cod     json.RawMessage `json:"cod"`
	Message json.RawMessage `json:"message"`
}

// upstreamDocument mirrors the upstream schema. Every scalar is optional and
// modelled as a pointer; toResponse substitutes zero values for nil fields.
type upstreamDocument struct {
	Current  *upstreamCurrent `json:"current"`
	Minutely []upstreamMinute `json:"minutely"`
	Hourly   []upstreamHourly `json:"hourly"`
	Daily    []upstreamDaily  `json:"daily"`
	Alerts   []upstreamAlert  `json:"alerts"`
}

type upstreamCondition struct {
	ID          *int32  `json:"id"`
	Main        *string `json:"main"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

type upstreamCurrent struct {
	Dt         *int64              `json:"dt"`
	Sunrise    *int64              `json:"sunrise"`
	Sunset     *int64              `json:"sunset"`
	Temp       *float64            `json:"temp"`
	FeelsLike  *float64            `json:"feels_like"`
	Pressure   *int32              `json:"pressure"`
	Humidity   *int32              `json:"humidity"`
	DewPoint   *float64            `json:"dew_point"`
	Uvi        *float64            `json:"uvi"`
	Clouds     *int32              `json:"clouds"`
	Visibility *int32              `json:"visibility"`
	WindSpeed  *float64            `json:"wind_speed"`
	WindDeg    *int32              `json:"wind_deg"`
	WindGust   *float64            `json:"wind_gust"`
	Weather    []upstreamCondition `json:"weather"`
}

type upstreamMinute struct {
	Dt            *int64   `json:"dt"`
	Precipitation *float64 `json:"precipitation"`
}

type upstreamHourly struct {
	Dt         *int64              `json:"dt"`
	Temp       *float64            `json:"temp"`
	FeelsLike  *float64            `json:"feels_like"`
	Pressure   *int32              `json:"pressure"`
	Humidity   *int32              `json:"humidity"`
	DewPoint   *float64            `json:"dew_point"`
	Clouds     *int32              `json:"clouds"`
	Visibility *int32              `json:"visibility"`
	WindSpeed  *float64            `json:"wind_speed"`
	WindDeg    *int32              `json:"wind_deg"`
	WindGust   *float64            `json:"wind_gust"`
	Pop        *float64            `json:"pop"`
	Weather    []upstreamCondition `json:"weather"`
}

type upstreamTemperature struct {
	Day   *float64 `json:"day"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
	Night *float64 `json:"night"`
	Eve   *float64 `json:"eve"`
	Morn  *float64 `json:"morn"`
}

type upstreamFeelsLike struct {
	Day   *float64 `json:"day"`
	Night *float64 `json:"night"`
	Eve   *float64 `json:"eve"`
	Morn  *float64 `json:"morn"`
}

type upstreamDaily struct {
	Dt        *int64               `json:"dt"`
	Sunrise   *int64               `json:"sunrise"`
	Sunset    *int64               `json:"sunset"`
	Moonrise  *int64               `json:"moonrise"`
	Moonset   *int64               `json:"moonset"`
	MoonPhase *float64             `json:"moon_phase"`
	Temp      *upstreamTemperature `json:"temp"`
	FeelsLike *upstreamFeelsLike   `json:"feels_like"`
	Pressure  *int32               `json:"pressure"`
	Humidity  *int32               `json:"humidity"`
	DewPoint  *float64             `json:"dew_point"`
	WindSpeed *float64             `json:"wind_speed"`
	WindDeg   *int32               `json:"wind_deg"`
	WindGust  *float64             `json:"wind_gust"`
	Clouds    *int32               `json:"clouds"`
	Pop       *float64             `json:"pop"`
	Uvi       *float64             `json:"uvi"`
	Weather   []upstreamCondition  `json:"weather"`
}

type upstreamAlert struct {
	SenderName  *string  `json:"sender_name"`
	Event       *string  `json:"event"`
	Start       *int64   `json:"start"`
	End         *int64   `json:"end"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

// Translate converts an upstream One Call document into a WeatherDataResponse.
//
// An error document ("cod" present and not 200) yields an *UpstreamError.
// A body that is not JSON yields ErrTransport, and a document that does not
// fit the schema yields ErrTranslation. No partial response is returned.
func Translate(body []byte) (WeatherDataResponse, error) {
	if !json.Valid(body) {
		return WeatherDataResponse{}, fmt.Errorf("%w: upstream body is not JSON", ErrTransport)
	}

	var env upstreamEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return WeatherDataResponse{}, fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	if upErr := checkEnvelope(env); upErr != nil {
		return WeatherDataResponse{}, upErr
	}

	var doc upstreamDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return WeatherDataResponse{}, fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	return doc.toResponse()
}

// checkEnvelope returns an *UpstreamError when the document reports a failure.
// "cod" may be a number or a numeric string.
func checkEnvelope(env upstreamEnvelope) *UpstreamError {
	if isAbsent(env.Cod) {
		return nil
	}

	var code string
	var raw interface{}
	if err := json.Unmarshal(env.Cod, &raw); err != nil {
		code = string(env.Cod)
	} else {
		switch v := raw.(type) {
		case float64:
			if v == successCode {
				return nil
			}
			code = strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			code = strings.TrimSpace(v)
			if code == strconv.Itoa(successCode) {
				return nil
			}
		default:
			code = string(env.Cod)
		}
	}

	message := defaultUpstreamMessage
	var s string
	if !isAbsent(env.Message) && json.Unmarshal(env.Message, &s) == nil && s != "" {
		message = s
	}
	return &UpstreamError{Code: code, Message: message}
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func (d upstreamDocument) toResponse() (WeatherDataResponse, error) {
	resp := WeatherDataResponse{
		Minutely: mapAll(d.Minutely, upstreamMinute.toMinute),
		Hourly:   mapAll(d.Hourly, upstreamHourly.toHourly),
		Alerts:   mapAll(d.Alerts, upstreamAlert.toAlert),
		Daily:    make([]DailyForecast, 0, len(d.Daily)),
	}
	if d.Current != nil {
		current := d.Current.toCurrent()
		resp.Current = &current
	}
	for i, day := range d.Daily {
		forecast, err := day.toDaily()
		if err != nil {
			return WeatherDataResponse{}, fmt.Errorf("%w: daily[%d]: %v", ErrTranslation, i, err)
		}
		resp.Daily = append(resp.Daily, forecast)
	}
	return resp, nil
}

func (c upstreamCondition) toCondition() WeatherCondition {
	return WeatherCondition{
		ID:          valueOr(c.ID),
		Main:        valueOr(c.Main),
		Description: valueOr(c.Description),
		Icon:        valueOr(c.Icon),
	}
}

func (c upstreamCurrent) toCurrent() CurrentWeather {
	return CurrentWeather{
		Dt:         valueOr(c.Dt),
		Sunrise:    valueOr(c.Sunrise),
		Sunset:     valueOr(c.Sunset),
		Temp:       valueOr(c.Temp),
		FeelsLike:  valueOr(c.FeelsLike),
		Pressure:   valueOr(c.Pressure),
		Humidity:   valueOr(c.Humidity),
		DewPoint:   valueOr(c.DewPoint),
		Uvi:        valueOr(c.Uvi),
		Clouds:     valueOr(c.Clouds),
		Visibility: valueOr(c.Visibility),
		WindSpeed:  valueOr(c.WindSpeed),
		WindDeg:    valueOr(c.WindDeg),
		WindGust:   valueOr(c.WindGust),
		Weather:    mapAll(c.Weather, upstreamCondition.toCondition),
	}
}

func (m upstreamMinute) toMinute() MinuteForecast {
	return MinuteForecast{
		Dt:            valueOr(m.Dt),
		Precipitation: valueOr(m.Precipitation),
	}
}

func (h upstreamHourly) toHourly() HourlyForecast {
	return HourlyForecast{
		Dt:         valueOr(h.Dt),
		Temp:       valueOr(h.Temp),
		FeelsLike:  valueOr(h.FeelsLike),
		Pressure:   valueOr(h.Pressure),
		Humidity:   valueOr(h.Humidity),
		DewPoint:   valueOr(h.DewPoint),
		Clouds:     valueOr(h.Clouds),
		Visibility: valueOr(h.Visibility),
		WindSpeed:  valueOr(h.WindSpeed),
		WindDeg:    valueOr(h.WindDeg),
		WindGust:   valueOr(h.WindGust),
		Pop:        valueOr(h.Pop),
		Weather:    mapAll(h.Weather, upstreamCondition.toCondition),
	}
}

// toDaily requires the nested temp and feels_like objects; their own fields default to 0.
func (d upstreamDaily) toDaily() (DailyForecast, error) {
	if d.Temp == nil {
		return DailyForecast{}, fmt.Errorf("missing temp")
	}
	if d.FeelsLike == nil {
		return DailyForecast{}, fmt.Errorf("missing feels_like")
	}
	return DailyForecast{
		Dt:        valueOr(d.Dt),
		Sunrise:   valueOr(d.Sunrise),
		Sunset:    valueOr(d.Sunset),
		Moonrise:  valueOr(d.Moonrise),
		Moonset:   valueOr(d.Moonset),
		MoonPhase: valueOr(d.MoonPhase),
		Temp: Temperature{
			Day:   valueOr(d.Temp.Day),
			Min:   valueOr(d.Temp.Min),
			Max:   valueOr(d.Temp.Max),
			Night: valueOr(d.Temp.Night),
			Eve:   valueOr(d.Temp.Eve),
			Morn:  valueOr(d.Temp.Morn),
		},
		FeelsLike: FeelsLike{
			Day:   valueOr(d.FeelsLike.Day),
			Night: valueOr(d.FeelsLike.Night),
			Eve:   valueOr(d.FeelsLike.Eve),
			Morn:  valueOr(d.FeelsLike.Morn),
		},
		Pressure:  valueOr(d.Pressure),
		Humidity:  valueOr(d.Humidity),
		DewPoint:  valueOr(d.DewPoint),
		WindSpeed: valueOr(d.WindSpeed),
		WindDeg:   valueOr(d.WindDeg),
		WindGust:  valueOr(d.WindGust),
		Clouds:    valueOr(d.Clouds),
		Pop:       valueOr(d.Pop),
		Uvi:       valueOr(d.Uvi),
		Weather:   mapAll(d.Weather, upstreamCondition.toCondition),
	}, nil
}

func (a upstreamAlert) toAlert() WeatherAlert {
	tags := make([]string, len(a.Tags))
	copy(tags, a.Tags)
	return WeatherAlert{
		SenderName:  valueOr(a.SenderName),
		Event:       valueOr(a.Event),
		Start:       valueOr(a.Start),
		End:         valueOr(a.End),
		Description: valueOr(a.Description),
		Tags:        tags,
	}
}

// valueOr returns *p, or the zero value of T when p is nil.
func valueOr[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// mapAll maps in to a new, never nil, slice in the same order.
func mapAll[S, T any](in []S, f func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
