package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/internal/header"
	"github.com/kapu/higapro-site/internal/view"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// headerEvent is sent by the browser for every layout image that finished loading.
type headerEvent struct {
	Event string `json:"event"`
	Index int    `json:"index"`
}

// headerFrame is pushed to the browser after every change of the session's header.
type headerFrame struct {
	Loaded   bool   `json:"loaded"`
	Header   string `json:"header"`
	Progress string `json:"progress"`
}

// handleHeaderSocket attaches the browser to its page-view session. Reads happen
// on the handler goroutine; a single writer goroutine owns all writes.
func (s *Server) handleHeaderSocket(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Get(r.URL.Query().Get("session"))
	if !ok {
		http.Error(w, "unknown header session", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Header socket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.HeaderSockets.Inc()
		defer s.metrics.HeaderSockets.Dec()
	}

	changed := make(chan struct{}, 1)
	unsubscribe := session.Store.Subscribe(func(header.Snapshot) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeHeaderFrames(conn, session, changed, done)
	}()

	s.readHeaderEvents(conn, session, changed)
	close(done)
	<-writerDone
}

func (s *Server) readHeaderEvents(conn *websocket.Conn, session *header.Session, changed chan<- struct{}) {
	pongWait := constants.HeaderSession.PongWait
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var event headerEvent
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("Header socket closed", zap.String("session", session.ID), zap.Error(err))
			}
			return
		}

		if event.Event != "image_loaded" {
			continue
		}
		if err := session.Tracker.Report(event.Index); err != nil {
			s.logger.Debug("Ignoring image report", zap.String("session", session.ID), zap.Error(err))
			continue
		}
		// progress changed even when the loaded flag did not
		select {
		case changed <- struct{}{}:
		default:
		}
	}
}

func (s *Server) writeHeaderFrames(conn *websocket.Conn, session *header.Session, changed <-chan struct{}, done <-chan struct{}) {
	writeTimeout := constants.HeaderSession.WriteTimeout
	ticker := time.NewTicker(constants.HeaderSession.PongWait * 9 / 10)
	defer ticker.Stop()

	send := func() bool {
		frame, err := s.frame(session)
		if err != nil {
			s.logger.Error("Failed to render header", zap.String("session", session.ID), zap.Error(err))
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			return false
		}
		return true
	}

	if !send() {
		return
	}

	for {
		select {
		case <-done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case <-changed:
			if !send() {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func (s *Server) frame(session *header.Session) (headerFrame, error) {
	snap := session.Store.Read()
	html, err := view.RenderString(snap.Content)
	if err != nil {
		return headerFrame{}, err
	}
	loaded, total := session.Tracker.Progress()
	return headerFrame{
		Loaded:   snap.Loaded,
		Header:   html,
		Progress: view.ProgressLabel(loaded, total),
	}, nil
}
