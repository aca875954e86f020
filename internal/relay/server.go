package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"LiveBoard/internal/state"
)

// Server exposes a Hub over HTTP.
type Server struct {
	hub      *Hub
	router   *mux.Router
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewServer(hub *Hub) *Server {
	s := &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: slog.Default().With("component", "relay"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("room")
	if code == "" {
		http.Error(w, ErrMissingRoom.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := newClient(clientID(r.URL.Query().Get("user")), conn, s.hub)
	room, err := s.hub.join(code, c)
	if err != nil {
		s.log.Error("join failed", "room", code, "error", err)
		conn.Close()
		return
	}
	c.room = room

	go c.writePump()
	c.readPump()
}

// clientID keeps the identity a reconnecting client asks for, so its
// strokes stay undoable, and issues a new one otherwise.
func clientID(requested string) string {
	if _, err := uuid.Parse(requested); err == nil {
		return requested
	}
	return state.NewUserID()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	rooms, clients := s.hub.Stats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"rooms":   rooms,
		"clients": clients,
	})
}

// Serve accepts connections on ln and runs room cleanup until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}

	go s.hub.RunCleanup(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("relay listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve relay: %w", err)
	}
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start relay on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}
