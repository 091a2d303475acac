package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/courtvision/internal/events"
)

// Envelope is the wire format for events sent over the feed WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	GameID    string          `json:"game_id,omitempty"`
	Teams     []string        `json:"teams,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		GameID:    evt.GameID,
		Teams:     evt.Teams,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	})
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		GameID:    env.GameID,
		Teams:     env.Teams,
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventPrediction:
		var p events.PredictionEvent
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return evt, fmt.Errorf("unmarshal prediction: %w", err)
		}
		evt.Payload = p
	case events.EventReplay:
		var r events.ReplaySummary
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			return evt, fmt.Errorf("unmarshal replay: %w", err)
		}
		evt.Payload = r
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}
	return evt, nil
}
