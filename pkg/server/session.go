package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/streamstore/internal/errors"
	"github.com/vango-dev/streamstore/pkg/runtime"
	"github.com/vango-dev/streamstore/pkg/stream"
)

// Session is one live connection with its own mounted tree and store.
type Session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	logger *slog.Logger

	root  *runtime.Root
	store *stream.Store[stream.Record]

	writeMu   sync.Mutex
	closeOnce sync.Once
	startedAt time.Time
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Store returns the session's store.
func (s *Session) Store() *stream.Store[stream.Record] {
	return s.store
}

// Root returns the session's mounted tree.
func (s *Session) Root() *runtime.Root {
	return s.root
}

// ReadLoop reads and handles frames until the connection closes or ctx
// is done, then closes the session.
func (s *Session) ReadLoop(ctx context.Context) {
	defer s.Close()

	cfg := s.server.config
	s.conn.SetReadLimit(cfg.MaxMessageSize)

	for {
		if ctx.Err() != nil {
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.handleMessage(ctx, msg)
	}
}

// handleMessage decodes and handles one frame, answering failures with an
// error frame.
func (s *Session) handleMessage(ctx context.Context, msg []byte) {
	frame, err := DecodeFrame(msg)
	if err != nil {
		s.logger.Warn("frame decode error", "error", err)
		s.reply(errorFrame(err))
		s.server.recordFrame("invalid", errors.CodeOf(err))
		return
	}

	ctx, span := s.server.tracer.Start(ctx, "session.frame",
		trace.WithAttributes(
			attribute.String("streamstore.session", s.id),
			attribute.String("streamstore.frame", frame.Type),
		))
	defer span.End()

	status := "ok"
	if err := s.handleFrame(ctx, frame); err != nil {
		status = errors.CodeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("frame failed", "type", frame.Type, "code", status, "error", err)
		s.reply(errorFrame(err))
	}
	s.server.recordFrame(frame.Type, status)
}

func (s *Session) handleFrame(ctx context.Context, f *Frame) error {
	switch f.Type {
	case FramePing:
		return s.send(&Frame{Type: FramePong})

	case FrameUpdate:
		if f.Partial == nil {
			return errors.New("E020").WithDetail("update frame without partial")
		}
		s.store.Update(f.Partial)

	case FrameAction:
		action, ok := s.server.app.Actions[f.Name]
		if !ok {
			return errors.New("E022").WithDetailf("action %q", f.Name)
		}
		if err := action(s.store, f.Args); err != nil {
			return errors.FromError(err, "E023")
		}

	default:
		return errors.New("E021").WithDetailf("frame type %q", f.Type)
	}

	return s.render(ctx)
}

// render flushes the tree and sends the resulting markup. Render errors of
// single components leave their subtree empty and are only logged.
func (s *Session) render(ctx context.Context) error {
	if err := s.root.FlushContext(ctx); err != nil {
		if errors.CodeOf(err) == "E004" {
			return err
		}
		s.logger.Warn("render error", "error", err)
	}
	html, err := s.root.HTML()
	if err != nil {
		return err
	}
	return s.send(&Frame{Type: FrameRender, HTML: html})
}

// send writes one frame.
func (s *Session) send(f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(s.server.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// reply sends f, logging instead of returning write errors.
func (s *Session) reply(f *Frame) {
	if err := s.send(f); err != nil {
		s.logger.Debug("write failed", "error", err)
	}
}

// Close unmounts the tree and closes the connection. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		s.conn.Close()

		s.root.Unmount()
		s.server.removeSession(s)
		s.logger.Info("session closed", "duration", time.Since(s.startedAt))
	})
}
