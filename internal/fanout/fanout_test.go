package fanout

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/courtvision/internal/events"
)

func prediction(home, away string) events.Event {
	return events.Event{
		ID:        home + away,
		Type:      events.EventPrediction,
		GameID:    "g-" + home,
		Teams:     []string{home, away},
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:   events.PredictionEvent{Home: home, Away: away, HomeWinProb: 0.61, Spread: 4, HomeScore: 115, AwayScore: 111, Source: "heuristic"},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	data, err := MarshalEvent(prediction("BOS", "NYK"))
	require.NoError(t, err)

	evt, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, events.EventPrediction, evt.Type)
	assert.Equal(t, []string{"BOS", "NYK"}, evt.Teams)
	p, ok := evt.Payload.(events.PredictionEvent)
	require.True(t, ok)
	assert.Equal(t, 115, p.HomeScore)

	_, err = UnmarshalEvent([]byte(`{"type":"bogus","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")
}

func TestServerFiltersByTeamAndClientRepublishes(t *testing.T) {
	serverBus := events.NewBus()
	srv := NewServer(serverBus)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	localBus := events.NewBus()
	got := make(chan events.Event, 4)
	localBus.Subscribe(events.EventPrediction, func(e events.Event) error {
		got <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := NewClient(strings.TrimPrefix(ts.URL, "http://"), "lal", localBus)
	go client.ConnectWithRetry(ctx)

	require.Eventually(t, func() bool { return srv.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	serverBus.Publish(prediction("BOS", "NYK"))
	serverBus.Publish(prediction("LAL", "DEN"))

	select {
	case e := <-got:
		assert.Equal(t, "g-LAL", e.GameID)
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}
	select {
	case e := <-got:
		t.Fatalf("unexpected event %s", e.GameID)
	case <-time.After(100 * time.Millisecond):
	}
}
