package events

import "time"

// Event is the envelope that flows through the event bus.
type Event struct {
	ID        string
	Type      EventType
	GameID    string
	Teams     []string // participants, used for subscriber filtering
	Timestamp time.Time
	Payload   any
}

type EventType string

const (
	EventPrediction EventType = "prediction"
	EventReplay     EventType = "replay"
)

// Involves reports whether the event concerns team. Events without
// participants concern everyone.
func (e Event) Involves(team string) bool {
	if len(e.Teams) == 0 {
		return true
	}
	for _, t := range e.Teams {
		if t == team {
			return true
		}
	}
	return false
}
