package sniper

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/puntaluxe/growth-engine/pkg/logging"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// FeedSocket streams newly ingested prospects to connected dashboard
// clients over WebSocket. Each connection gets a snapshot first, then
// live inserts until the client disconnects.
type FeedSocket struct {
	feed     *Feed
	logger   *logging.Logger
	upgrader websocket.Upgrader
}

// feedMessage is the wire shape pushed to clients.
type feedMessage struct {
	Type      string     `json:"type"` // "snapshot" or "prospect"
	Prospects []Prospect `json:"prospects,omitempty"`
	Prospect  *Prospect  `json:"prospect,omitempty"`
	Stats     *Stats     `json:"stats,omitempty"`
}

func NewFeedSocket(feed *Feed, logger *logging.Logger) *FeedSocket {
	if logger == nil {
		logger = logging.Default()
	}
	return &FeedSocket{
		feed:   feed,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin is enforced by the CORS middleware in front of us.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handle upgrades the request and serves the live feed.
func (s *FeedSocket) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("feed socket upgrade failed", "error", err)
		return
	}

	ch, cancel := s.feed.Subscribe()
	defer cancel()
	defer conn.Close()

	snapshot := s.feed.Snapshot()
	stats := s.feed.Stats()
	if err := s.write(conn, feedMessage{Type: "snapshot", Prospects: snapshot, Stats: &stats}); err != nil {
		return
	}

	// Reader goroutine: we never expect client frames, but reading is what
	// surfaces the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case p, ok := <-ch:
			if !ok {
				return
			}
			if err := s.write(conn, feedMessage{Type: "prospect", Prospect: &p}); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (s *FeedSocket) write(conn *websocket.Conn, msg feedMessage) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("feed socket write failed", "error", err)
		return err
	}
	return nil
}
