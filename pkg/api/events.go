package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rubiojr/reposearch/pkg/query"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type initMessage struct {
	Type     string         `json:"type"`
	Count    int            `json:"count"`
	Searches []HistoryEntry `json:"searches"`
}

// HandleHistoryEvents streams history changes over a WebSocket. The first
// message is a snapshot of the current history.
func (s *Server) HandleHistoryEvents(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Events disabled", "no event hub configured")
		return
	}
	if !s.historyEnabled(w) {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	// Subscribe before the snapshot so no change falls in between.
	id, events := s.hub.Register()
	defer s.hub.Unregister(id)

	items := s.history.List()
	snapshot := initMessage{Type: "init", Count: len(items), Searches: make([]HistoryEntry, len(items))}
	for i, it := range items {
		snapshot.Searches[i] = HistoryEntry{Item: it, Formatted: query.Parse(it.Query)}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(snapshot); err != nil {
		logger.Debugf("websocket init write: %v", err)
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger.Debugf("websocket listener %d connected (%d active)", id, s.hub.Size())
	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debugf("websocket write: %v", err)
				return
			}
		}
	}
}
