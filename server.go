package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

var errInvalidConfig = errors.New("invalid config")

const (
	maxFPS          = 120
	queueSize       = 100
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	Addr  string
	FPS   int
	Title string
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty address", errInvalidConfig)
	}
	if c.FPS < 1 || c.FPS > maxFPS {
		return fmt.Errorf("%w: fps must be in [1, %d], got %d", errInvalidConfig, maxFPS, c.FPS)
	}
	return nil
}

type server[S any] struct {
	cfg  Config
	init S
	app  AppFunc[S]
	log  *zap.Logger
	page []byte
}

func newServer[S any](cfg Config, init S, app AppFunc[S], log *zap.Logger) (*server[S], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	if err := indexTemplate.Execute(&page, struct{ Title string }{cfg.Title}); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}

	return &server[S]{
		cfg:  cfg,
		init: init,
		app:  app,
		log:  log,
		page: page.Bytes(),
	}, nil
}

func (s *server[S]) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.Handle("/ws", websocket.Handler(s.serveSession))
	return mux
}

func (s *server[S]) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(s.page); err != nil {
		s.log.Debug("write index", zap.Error(err))
	}
}

// serveSession mounts a fresh copy of the initial state for the connection
// and drives its frames until either side goes away.
func (s *server[S]) serveSession(c *websocket.Conn) {
	log := s.log.With(zap.String("session", uuid.NewString()))
	log.Info("session mounted", zap.String("remote", c.Request().RemoteAddr))

	sess := newSession(s.init, s.app)
	queue := make(chan event, queueSize)
	done := make(chan struct{})
	quit := make(chan struct{})
	go readEvents(c, log, queue, done, quit)
	defer func() {
		// the reader is blocked in Receive until the conn is closed
		close(quit)
		_ = c.Close()
		<-done
		log.Debug("session elements", zap.Int("elem_count", sess.elems.Len()), zap.Stringer("elems", &sess.elems))
		log.Info("session unmounted")
	}()

	ticker := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer ticker.Stop()
	for {
		for _, err := range sess.dispatch(queue) {
			log.Warn("drop event", zap.Error(err))
		}
		for _, cmd := range sess.render() {
			if err := websocket.JSON.Send(c, cmd); err != nil {
				log.Info("write command", zap.Error(err))
				return
			}
		}

		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func readEvents(c *websocket.Conn, log *zap.Logger, queue chan<- event, done, quit chan struct{}) {
	defer close(done)
	for {
		var msg []byte
		if err := websocket.Message.Receive(c, &msg); err != nil {
			select {
			case <-quit:
				// closed by serveSession
				return
			default:
			}
			if errors.Is(err, io.EOF) {
				log.Debug("connection closed by peer")
			} else {
				log.Warn("read event", zap.Error(err))
			}
			return
		}

		var e event
		if err := json.Unmarshal(msg, &e); err != nil {
			log.Warn("decode event", zap.Error(err), zap.ByteString("msg", msg))
			continue
		}
		log.Debug("received event", zap.String("id", string(e.ID)), zap.String("event", e.Event))

		select {
		case queue <- e:
		case <-quit:
			return
		}
	}
}

// run serves until ctx is cancelled, then shuts the listener down.
func (s *server[S]) run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("running", zap.String("addr", s.cfg.Addr), zap.Int("fps", s.cfg.FPS))

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
