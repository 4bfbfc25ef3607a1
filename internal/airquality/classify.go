package airquality

// severityBand is one contiguous range of the AQI scale.
type severityBand struct {
	lo, hi   int
	category string
	color    string
}

var severityBands = []severityBand{
	{0, 50, "Good", "#00E400"},
	{51, 100, "Moderate", "#FFFF00"},
	{101, 150, "Unhealthy for Sensitive Groups", "#FF7E00"},
	{151, 200, "Unhealthy", "#FF0000"},
	{201, 300, "Very Unhealthy", "#8F3F97"},
	{301, 500, "Hazardous", "#7E0023"},
}

const (
	categoryUnknown = "Unknown"
	colorUnknown    = "#808080"
)

// Classify maps an index value to its severity category and display color.
// Values outside the defined scale classify as Unknown.
func Classify(value int) (category, color string) {
	for _, b := range severityBands {
		if value >= b.lo && value <= b.hi {
			return b.category, b.color
		}
	}
	return categoryUnknown, colorUnknown
}
