package airquality

import (
	"math/rand/v2"
	"time"
)

const historyHours = 24

// synthesizeHistory derives an hourly 24-entry trend from the current
// reading. Entries are ordered oldest first; the last entry falls on the
// current reading's timestamp. Values jitter around the current reading
// within the index scale, and each entry is reclassified from its own
// value.
func synthesizeHistory(current Reading, rng *rand.Rand) []Reading {
	series := make([]Reading, 0, historyHours)
	for i := 0; i < historyHours; i++ {
		value := clamp(current.Value+jitter(rng, 10), 0, 500)
		category, color := Classify(value)
		series = append(series, Reading{
			Value:     value,
			Category:  category,
			Color:     color,
			Timestamp: current.Timestamp.Add(-time.Duration(historyHours-1-i) * time.Hour),
			Pollutants: Pollutants{
				PM25: max(0, current.Pollutants.PM25+jitter(rng, 5)),
				PM10: max(0, current.Pollutants.PM10+jitter(rng, 5)),
				O3:   max(0, current.Pollutants.O3+jitter(rng, 5)),
			},
		})
	}
	return series
}

// jitter returns a uniform value in [-n, n].
func jitter(rng *rand.Rand, n int) int {
	return rng.IntN(2*n+1) - n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
