package weather

// Coordinates identifies the point a weather report is requested for.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherDataRequest is the typed request accepted by GetWeatherData.
type WeatherDataRequest struct {
	Coordinates Coordinates `json:"coordinates"`
	Exclude     []string    `json:"exclude,omitempty"`
	Units       string      `json:"units,omitempty"`
	Language    string      `json:"language,omitempty"`
}

// WeatherCondition is one entry of an upstream "weather" list.
type WeatherCondition struct {
	ID          int32  `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentWeather is the snapshot for the time of the request.
type CurrentWeather struct {
	Dt         int64              `json:"dt"`
	Sunrise    int64              `json:"sunrise"`
	Sunset     int64              `json:"sunset"`
	Temp       float64            `json:"temp"`
	FeelsLike  float64            `json:"feels_like"`
	Pressure   int32              `json:"pressure"`
	Humidity   int32              `json:"humidity"`
	DewPoint   float64            `json:"dew_point"`
	Uvi        float64            `json:"uvi"`
	Clouds     int32              `json:"clouds"`
	Visibility int32              `json:"visibility"`
	WindSpeed  float64            `json:"wind_speed"`
	WindDeg    int32              `json:"wind_deg"`
	WindGust   float64            `json:"wind_gust"`
	Weather    []WeatherCondition `json:"weather"`
}

// MinuteForecast is the precipitation volume for one forecast minute.
type MinuteForecast struct {
	Dt            int64   `json:"dt"`
	Precipitation float64 `json:"precipitation"`
}

// HourlyForecast is the forecast for one hour.
type HourlyForecast struct {
	Dt         int64              `json:"dt"`
	Temp       float64            `json:"temp"`
	FeelsLike  float64            `json:"feels_like"`
	Pressure   int32              `json:"pressure"`
	Humidity   int32              `json:"humidity"`
	DewPoint   float64            `json:"dew_point"`
	Clouds     int32              `json:"clouds"`
	Visibility int32              `json:"visibility"`
	WindSpeed  float64            `json:"wind_speed"`
	WindDeg    int32              `json:"wind_deg"`
	WindGust   float64            `json:"wind_gust"`
	Pop        float64            `json:"pop"`
	Weather    []WeatherCondition `json:"weather"`
}

// Temperature holds the daily temperatures by part of day.
type Temperature struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// FeelsLike holds the daily perceived temperatures by part of day.
type FeelsLike struct {
	Day   float64 `json:"day"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

// DailyForecast is the forecast for one day.
type DailyForecast struct {
	Dt        int64              `json:"dt"`
	Sunrise   int64              `json:"sunrise"`
	Sunset    int64              `json:"sunset"`
	Moonrise  int64              `json:"moonrise"`
	Moonset   int64              `json:"moonset"`
	MoonPhase float64            `json:"moon_phase"`
	Temp      Temperature        `json:"temp"`
	FeelsLike FeelsLike          `json:"feels_like"`
	Pressure  int32              `json:"pressure"`
	Humidity  int32              `json:"humidity"`
	DewPoint  float64            `json:"dew_point"`
	WindSpeed float64            `json:"wind_speed"`
	WindDeg   int32              `json:"wind_deg"`
	WindGust  float64            `json:"wind_gust"`
	Clouds    int32              `json:"clouds"`
	Pop       float64            `json:"pop"`
	Uvi       float64            `json:"uvi"`
	Weather   []WeatherCondition `json:"weather"`
}

// WeatherAlert is a national weather alert issued for the location.
type WeatherAlert struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// WeatherDataResponse is the aggregate returned by GetWeatherData.
// Current is nil when upstream did not send a "current" section; the
// collections are never nil and keep upstream order.
type WeatherDataResponse struct {
	Current  *CurrentWeather  `json:"current,omitempty"`
	Minutely []MinuteForecast `json:"minutely"`
	Hourly   []HourlyForecast `json:"hourly"`
	Daily    []DailyForecast  `json:"daily"`
	Alerts   []WeatherAlert   `json:"alerts"`
}
