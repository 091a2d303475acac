package fanout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/courtvision/internal/events"
	"github.com/charleschow/courtvision/internal/telemetry"
)

const (
	clientSendBuf = 256
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// subscriber follows every game, or only games involving team.
type subscriber struct {
	team string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func (s *subscriber) label() string {
	if s.team == "" {
		return "all"
	}
	return s.team
}

// Server fans out bus events to connected feed subscribers.
type Server struct {
	mu      sync.Mutex
	clients map[*subscriber]struct{}
}

func NewServer(bus *events.Bus) *Server {
	s := &Server{
		clients: make(map[*subscriber]struct{}),
	}
	bus.Subscribe(events.EventPrediction, s.forward)
	bus.Subscribe(events.EventReplay, s.forward)
	return s
}

// forward is called on the publisher's goroutine. It serializes the event
// and enqueues it to matching clients' send channels (non-blocking).
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		return fmt.Errorf("fanout: marshal: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		if c.team != "" && !evt.Involves(c.team) {
			continue
		}
		select {
		case c.send <- data:
		default:
			telemetry.Warnf("fanout: dropping message for slow subscriber team=%s", c.label())
		}
	}
	return nil
}

func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// HandleWS upgrades /ws requests. ?team=BOS narrows the feed to one team.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	c := &subscriber{
		team: strings.ToUpper(r.URL.Query().Get("team")),
		conn: conn,
		send: make(chan []byte, clientSendBuf),
		done: make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	telemetry.Metrics.FeedSubscribers.Set(int64(len(s.clients)))
	s.mu.Unlock()

	telemetry.Plainf("Feed: Subscriber Connected [%s]", c.label())

	go s.writePump(c)
	go s.readPump(c)
}

// writePump owns the subscriber lifecycle: on exit it removes the client
// from the map so forward never sends to a stale channel.
func (s *Server) writePump(c *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error team=%s: %v", c.label(), err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads pongs and close frames. Subscribers send nothing upstream.
func (s *Server) readPump(c *subscriber) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *subscriber) {
	s.mu.Lock()
	delete(s.clients, c)
	telemetry.Metrics.FeedSubscribers.Set(int64(len(s.clients)))
	s.mu.Unlock()
	telemetry.Plainf("Feed: Subscriber Disconnected [%s]", c.label())
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	return mux
}

// ListenAndServe serves the feed until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, host string, port int) error {
	srv := &http.Server{Addr: fmt.Sprintf("%s:%d", host, port), Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	telemetry.Plainf("feed: server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
