package server

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/streamstore/internal/errors"
	"github.com/vango-dev/streamstore/pkg/metrics"
	"github.com/vango-dev/streamstore/pkg/render"
	"github.com/vango-dev/streamstore/pkg/runtime"
	"github.com/vango-dev/streamstore/pkg/stream"
)

// Server hosts an App.
type Server struct {
	app    *App
	config *ServerConfig

	router   chi.Router
	upgrader websocket.Upgrader

	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	sessions   map[string]*Session
	sessionsMu sync.RWMutex

	httpServer *http.Server
}

// New creates a server for app. A nil config selects the defaults; unset
// fields are filled from DefaultServerConfig.
func New(app *App, config *ServerConfig, opts ...Option) *Server {
	config = config.withDefaults()

	s := &Server{
		app:    app,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "server")
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("github.com/vango-dev/streamstore/pkg/server")
	}

	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// runtimeOptions returns the options for a root mounted by this server.
func (s *Server) runtimeOptions(logger *slog.Logger, extra ...runtime.Option) []runtime.Option {
	opts := []runtime.Option{
		runtime.WithLogger(logger),
		runtime.WithTracer(s.tracer),
		runtime.WithMaxRenderPasses(s.config.MaxRenderPasses),
	}
	if s.metrics != nil {
		opts = append(opts, runtime.WithObserver(s.metrics))
	}
	return append(opts, extra...)
}

// RenderPage server-renders the app from its initial state. Nothing is
// subscribed; the tree is unmounted before returning.
func (s *Server) RenderPage(ctx context.Context) ([]byte, error) {
	_, span := s.tracer.Start(ctx, "server.render")
	defer span.End()

	root, err := runtime.Mount(s.app.tree(nil), s.runtimeOptions(s.logger, runtime.WithServerRender())...)
	defer root.Unmount()
	if err != nil {
		s.logger.Warn("server render error", "error", err)
	}

	var buf bytes.Buffer
	page := render.PageData{Title: s.app.Title, Body: root.Tree(), Script: clientScript}
	if err := render.NewRenderer(render.RendererConfig{}).RenderPage(&buf, page); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := s.RenderPage(r.Context())
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	sess, err := s.openSession(conn)
	if err != nil {
		s.logger.Error("session open failed", "error", err)
		conn.Close()
		return
	}
	// The request context ends when the handler returns, so the session
	// runs on a detached context.
	sess.ReadLoop(context.WithoutCancel(r.Context()))
}

// openSession mounts the app for conn and sends the hello and first
// render frames.
func (s *Server) openSession(conn *websocket.Conn) (*Session, error) {
	sess := &Session{
		id:        uuid.NewString(),
		server:    s,
		conn:      conn,
		startedAt: time.Now(),
	}
	sess.logger = s.logger.With("session", sess.id)

	var store *stream.Store[stream.Record]
	root, err := runtime.Mount(s.app.tree(&store), s.runtimeOptions(sess.logger)...)
	if err != nil {
		sess.logger.Warn("mount render error", "error", err)
	}
	if store == nil {
		root.Unmount()
		return nil, errors.New("E001").WithDetail("session root did not render its container")
	}
	sess.root = root
	sess.store = store

	s.sessionsMu.Lock()
	s.sessions[sess.id] = sess
	s.sessionsMu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	sess.logger.Info("session opened", "remote", conn.RemoteAddr().String())

	if err := sess.send(&Frame{Type: FrameHello, Session: sess.id}); err != nil {
		sess.Close()
		return nil, err
	}
	if err := sess.render(context.Background()); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func (s *Server) removeSession(sess *Session) {
	s.sessionsMu.Lock()
	_, ok := s.sessions[sess.id]
	delete(s.sessions, sess.id)
	s.sessionsMu.Unlock()

	if ok && s.metrics != nil {
		s.metrics.SessionClosed()
	}
}

func (s *Server) recordFrame(frameType, status string) {
	if s.metrics != nil {
		s.metrics.FrameHandled(frameType, status)
	}
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// Session returns the open session with the given ID.
func (s *Server) Session(id string) (*Session, bool) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("server shutting down")
	s.closeConnections()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// closeConnections closes every session connection. Each session's read
// loop then unmounts its own tree.
func (s *Server) closeConnections() {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	for _, sess := range s.sessions {
		sess.conn.Close()
	}
}
