package httpapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Advisory is a manually posted notice from campus staff.
type Advisory struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type advisoryRequest struct {
	Type    string `json:"type" validate:"required,oneof=emergency warning info"`
	Message string `json:"message" validate:"required"`
}

// Only the most recent advisories are kept.
const maxAdvisories = 10

// AdvisoryBoard is a concurrency-safe in-memory board of staff advisories,
// newest first.
type AdvisoryBoard struct {
	clock clockwork.Clock

	mu    sync.Mutex
	items []Advisory
}

func NewAdvisoryBoard(clock clockwork.Clock) *AdvisoryBoard {
	return &AdvisoryBoard{clock: clock}
}

// Post adds an advisory and evicts the oldest beyond the retention limit.
func (b *AdvisoryBoard) Post(advType, message string) Advisory {
	adv := Advisory{
		ID:        uuid.NewString(),
		Type:      advType,
		Message:   message,
		Timestamp: b.clock.Now().UTC(),
	}

	b.mu.Lock()
	b.items = append([]Advisory{adv}, b.items...)
	if len(b.items) > maxAdvisories {
		b.items = b.items[:maxAdvisories]
	}
	b.mu.Unlock()

	return adv
}

// List returns the current advisories, newest first.
func (b *AdvisoryBoard) List() []Advisory {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Advisory, len(b.items))
	copy(out, b.items)
	return out
}
