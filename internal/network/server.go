package network

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aldealabs/aldea/internal/engine"
	"github.com/aldealabs/aldea/internal/platform/logger"
	"github.com/aldealabs/aldea/internal/platform/metrics"
	"github.com/aldealabs/aldea/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

// Server is the websocket sync endpoint. Each connection is served by its
// own goroutine running a strict request/response loop: one inbound
// message, one outbound response, in order.
type Server struct {
	engine   *engine.Engine
	hub      *Hub
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewServer wires the sync server. hub may be nil when no observer feed is
// exposed.
func NewServer(e *engine.Engine, hub *Hub, log *logger.Logger) *Server {
	return &Server{
		engine: e,
		hub:    hub,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// HandleSync upgrades the connection and serves sync commands until the
// peer disconnects.
func (s *Server) HandleSync(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(fmt.Sprintf("sync upgrade failed: %v", err))
		return
	}
	metrics.Get().RecordConnection(1)
	defer func() {
		metrics.Get().RecordConnection(-1)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	remote := conn.RemoteAddr().String()
	s.log.Info("sync connection from " + remote)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn(fmt.Sprintf("sync read from %s: %v", remote, err))
			}
			return
		}

		resp := s.Dispatch(raw)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(resp); err != nil {
			s.log.Warn(fmt.Sprintf("sync write to %s: %v", remote, err))
			return
		}
		metrics.Get().RecordResponse()
	}
}

// HandleWatch upgrades the connection into a read-only event stream.
func (s *Server) HandleWatch(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "observer feed disabled", http.StatusNotFound)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(fmt.Sprintf("watch upgrade failed: %v", err))
		return
	}
	o := s.hub.attach(conn)
	defer s.hub.detach(o)
	s.hub.serve(r.Context(), o)
}

// Dispatch parses one raw command and executes it. Malformed input and
// refused mutations both come back as error responses; only the transport
// layer above ever terminates the connection.
func (s *Server) Dispatch(raw []byte) protocol.Response {
	req, err := protocol.ParseRequest(raw)
	if err != nil {
		metrics.Get().RecordCommand(true)
		return protocol.Response{Status: protocol.StatusError, Message: err.Error()}
	}

	var opErr error
	switch req.Command {
	case protocol.CmdGetWorldState:
		snap := s.engine.WorldSnapshot()
		metrics.Get().RecordCommand(false)
		return protocol.Response{Status: protocol.StatusSuccess, WorldState: &snap}
	case protocol.CmdRegisterCharacter:
		opErr = s.engine.RegisterCharacter(*req.Character)
	case protocol.CmdUpdateCharacter:
		opErr = s.engine.UpdateCharacter(*req.Character)
	default:
		opErr = &protocol.ProtocolError{Reason: "unhandled command " + req.Command}
	}

	if opErr != nil {
		metrics.Get().RecordCommand(true)
		var serr *protocol.StateError
		if errors.As(opErr, &serr) {
			return protocol.Response{Status: protocol.StatusError, Message: serr.Error()}
		}
		return protocol.Response{Status: protocol.StatusError, Message: opErr.Error()}
	}
	metrics.Get().RecordCommand(false)
	return protocol.Response{Status: protocol.StatusSuccess, Message: req.Command + " ok"}
}

// Routes mounts the server's endpoints on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/sync", s.HandleSync)
	mux.HandleFunc("/watch", s.HandleWatch)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clock := s.engine.World().Clock()
	fmt.Fprintf(w, `{"status":"ok","day":%d,"season":%q,"year":%d}`+"\n", clock.Day, clock.Season, clock.Year)
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	s.Routes(mux)

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	s.log.Info("sync server listening on " + addr)
	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}
