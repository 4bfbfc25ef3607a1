// Package airquality adapts the AirNow observation API into classified
// air-quality readings with a synthesized 24-hour trend.
package airquality

import "time"

// Pollutants carries the per-pollutant index values of a reading.
// A pollutant the station did not report is zero.
type Pollutants struct {
	PM25 int `json:"pm25"`
	PM10 int `json:"pm10"`
	O3   int `json:"o3"`
}

// Reading is a single classified air-quality observation.
type Reading struct {
	Value      int        `json:"value"`
	Category   string     `json:"category"`
	Color      string     `json:"color"`
	Timestamp  time.Time  `json:"timestamp"`
	Pollutants Pollutants `json:"pollutants"`
}

// Report is the full sensor payload: the current reading plus a
// 24-entry hourly trend ending at the current reading's timestamp.
type Report struct {
	Current    Reading   `json:"current"`
	Historical []Reading `json:"historical"`
}
