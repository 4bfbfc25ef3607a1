// Package notices scrapes the campus safety notice feed and turns its
// emergency banner and articles into typed alerts.
package notices

// AlertType orders alerts by urgency.
type AlertType string

const (
	TypeEmergency AlertType = "emergency"
	TypeWarning   AlertType = "warning"
	TypeInfo      AlertType = "info"
)

// Alert is one campus notice. Date keeps the feed's raw representation;
// recency filtering parses it separately and drops what it cannot read.
type Alert struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Link       string    `json:"link"`
	Type       AlertType `json:"type"`
	Categories []string  `json:"categories"`
	Summary    string    `json:"summary"`
}
