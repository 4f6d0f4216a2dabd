package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"asset-aggregator/controller/respond"
	"asset-aggregator/model"
	"asset-aggregator/timeline"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 << 10
	sendQueueSize  = 64
	totalTimeout   = 10 * time.Second
)

// Socket commands
const (
	CmdLoadMore      = "loadMore"
	CmdRefresh       = "refresh"
	CmdUpdateFilters = "updateFilters"
	CmdClearFilters  = "clearFilters"
	CmdSentinel      = "sentinel"
)

// Socket message types
const (
	MsgSnapshot = "snapshot"
	MsgAck      = "ack"
	MsgNewItems = "newItems"
	MsgError    = "error"
)

// TimelineBackend pages plus the live total used for new item notices
type TimelineBackend interface {
	timeline.PageFetcher
	Total(ctx context.Context, q model.PageQuery) (int64, error)
}

// SocketCommand client to server
type SocketCommand struct {
	Type    string             `json:"type"`
	Filters *model.FilterPatch `json:"filters,omitempty"`
}

// SocketMessage server to client
type SocketMessage struct {
	Type      string      `json:"type"`
	Command   string      `json:"command,omitempty"`
	Accepted  *bool       `json:"accepted,omitempty"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
}

// NewItemsNotice items minted since the session's last load
type NewItemsNotice struct {
	Count int64 `json:"count"`
	Total int64 `json:"total"`
}

// TimelineSocketHandler one timeline loader per websocket connection
type TimelineSocketHandler struct {
	backend      TimelineBackend
	cfg          timeline.Config
	pollInterval time.Duration
	upgrader     websocket.Upgrader
}

// NewTimelineSocketHandler pollInterval <= 0 disables new item notices
func NewTimelineSocketHandler(backend TimelineBackend, cfg timeline.Config, pollInterval time.Duration) *TimelineSocketHandler {
	return &TimelineSocketHandler{
		backend:      backend,
		cfg:          cfg,
		pollInterval: pollInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Serve upgrade and run a timeline session
// @Summary      Timeline session
// @Description  WebSocket. Send {"type":"loadMore|refresh|updateFilters|clearFilters|sentinel","filters":{...}}; receive snapshot, ack, newItems and error messages.
// @Tags         Timeline
// @Router       /timeline/ws [get]
func (h *TimelineSocketHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnf("⚠️  Timeline socket upgrade failed: %v", err)
		return
	}

	id := respond.RequestID(c)
	if id == "" {
		id = uuid.NewString()
	}
	s := &socketSession{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}
	s.loader = timeline.NewLoader(h.backend, h.cfg, timeline.WithOnChange(s.onSnapshot))
	log.Infof("🔌 Timeline session %s opened", s.id)

	if h.pollInterval > 0 {
		s.poller, err = timeline.PollWhile(h.pollInterval, s.idle, func() { s.checkNewItems(h.backend) })
		if err != nil {
			log.Warnf("⚠️  Timeline session %s: new item polling disabled: %v", s.id, err)
		}
	}

	go s.writePump()
	s.loader.LoadMore()
	s.readPump()

	s.poller.Stop()
	s.loader.Close()
	s.close()
	log.Infof("🔌 Timeline session %s closed", s.id)
}

type socketSession struct {
	id     string
	conn   *websocket.Conn
	loader *timeline.Loader
	poller *timeline.Poller

	mu       sync.Mutex
	closed   bool
	send     chan []byte
	lastSeen int64
	notified int64
}

func (s *socketSession) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("⚠️  Timeline session %s read error: %v", s.id, err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		s.handle(message)
	}
}

// writePump is the only writer on the connection
func (s *socketSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debugf("Timeline session %s write failed: %v", s.id, err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *socketSession) handle(raw []byte) {
	var cmd SocketCommand
	if err := json.Unmarshal(raw, &cmd); err != nil {
		s.enqueue(SocketMessage{Type: MsgError, Message: "malformed command"})
		return
	}

	var accepted bool
	switch cmd.Type {
	case CmdLoadMore:
		accepted = s.loader.LoadMore()
	case CmdSentinel:
		accepted = s.loader.OnSentinelVisible()
	case CmdRefresh:
		accepted = s.loader.Refresh()
		if accepted {
			s.mu.Lock()
			s.notified = 0
			s.mu.Unlock()
		}
	case CmdUpdateFilters:
		if cmd.Filters == nil {
			s.enqueue(SocketMessage{Type: MsgError, Command: cmd.Type, Message: "filters are required"})
			return
		}
		if err := s.loader.UpdateFilters(*cmd.Filters); err != nil {
			s.enqueue(SocketMessage{Type: MsgError, Command: cmd.Type, Message: err.Error()})
			return
		}
		accepted = true
	case CmdClearFilters:
		s.loader.ClearFilters()
		accepted = true
	default:
		s.enqueue(SocketMessage{Type: MsgError, Command: cmd.Type, Message: "unknown command"})
		return
	}
	s.enqueue(SocketMessage{Type: MsgAck, Command: cmd.Type, Accepted: &accepted})
}

func (s *socketSession) onSnapshot(snap timeline.Snapshot) {
	if snap.State == timeline.StateReady {
		s.mu.Lock()
		s.lastSeen = snap.Stats.TotalCount
		s.mu.Unlock()
	}
	s.enqueue(SocketMessage{Type: MsgSnapshot, Data: snap, SessionID: s.id})
}

// idle true once the first page is in and nothing is loading
func (s *socketSession) idle() bool {
	snap := s.loader.Snapshot()
	return snap.State == timeline.StateReady && !snap.Loading
}

func (s *socketSession) checkNewItems(backend TimelineBackend) {
	filters := s.loader.Snapshot().Filters
	ctx, cancel := context.WithTimeout(context.Background(), totalTimeout)
	defer cancel()

	total, err := backend.Total(ctx, filters.Query(0, 1))
	if err != nil {
		log.Debugf("Timeline session %s total check failed: %v", s.id, err)
		return
	}

	s.mu.Lock()
	base := s.lastSeen
	if s.notified > base {
		base = s.notified
	}
	if total <= base {
		s.mu.Unlock()
		return
	}
	s.notified = total
	count := total - s.lastSeen
	s.mu.Unlock()

	s.enqueue(SocketMessage{Type: MsgNewItems, Data: NewItemsNotice{Count: count, Total: total}})
}

// enqueue drops the message when the client is too slow to drain its queue
func (s *socketSession) enqueue(msg SocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("❌ Timeline session %s encode %s: %v", s.id, msg.Type, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- data:
	default:
		log.Warnf("⚠️  Timeline session %s send queue full, dropping %s", s.id, msg.Type)
	}
}

func (s *socketSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
