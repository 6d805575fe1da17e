package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tartampluch/go-birthday-web/internal/config"
	"github.com/tartampluch/go-birthday-web/internal/engine"
	"github.com/tartampluch/go-birthday-web/internal/locale"
	"github.com/tartampluch/go-birthday-web/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the HTTP layer in front of the date arithmetic and the author directory.
type Server struct {
	Addr string

	clock      engine.Clock
	directory  *engine.Directory
	translator *locale.Translator
	metrics    *metrics.Metrics
	templates  *template.Template
	logger     *slog.Logger
	httpLogger *slog.Logger
}

// Deps groups the collaborators a Server needs.
type Deps struct {
	Clock      engine.Clock
	Directory  *engine.Directory
	Translator *locale.Translator
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// New parses the embedded templates and returns a Server listening on addr once started.
func New(addr string, deps Deps) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTemplateParse, err)
	}

	clock := deps.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	directory := deps.Directory
	if directory == nil {
		directory = engine.NewDirectory(engine.DefaultAuthors()...)
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}
	translator := deps.Translator
	if translator == nil {
		if translator, err = locale.New(config.DefaultLanguage); err != nil {
			return nil, err
		}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		Addr:       addr,
		clock:      clock,
		directory:  directory,
		translator: translator,
		metrics:    m,
		templates:  tmpl,
		logger:     logger.With(config.LogKeyComponent, config.CompServer),
		httpLogger: logger.With(config.LogKeyComponent, config.CompHTTP),
	}, nil
}

// Routes builds the router with all endpoints and middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(s.httpLogger, s.metrics))
	r.Use(Recovery(s.httpLogger))
	r.Use(chimw.GetHead)

	r.Get(config.RouteHelloWorld, s.handleHelloWorld)
	r.Get(config.RouteDate, s.handleCurrentDate)
	r.Get(config.RouteMyAge, s.handleMyAge)
	r.Get(config.RouteNextBirthday, s.handleNextBirthday)
	r.Get(config.RouteNextBirthdayICS, s.handleNextBirthdayCalendar)
	r.Get(config.RouteProfile, s.handleProfile)
	r.Get(config.RouteAuthors, s.handleAuthors)
	r.Get(config.RouteAuthorsICS, s.handleAuthorsCalendar)
	r.Get(config.RouteAuthor, s.handleAuthor)
	r.Get(config.RouteAuthorVCard, s.handleAuthorVCard)
	r.Method(http.MethodGet, config.RouteMetrics, s.metrics.Handler())
	return r
}

// Start runs the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.Addr == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		s.logger.Info(config.MsgServerListen, config.LogKeyAddr, s.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(config.MsgServerStop)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// writeText writes a plain-text body with the given status.
func (s *Server) writeText(w http.ResponseWriter, r *http.Request, status int, body string) {
	w.Header().Set(config.HeaderContentType, config.MimeTextPlain)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)
	s.writeBody(w, r, []byte(body))
}

// writeHTML renders a template fully before sending anything, so a template
// error still produces a clean 500.
func (s *Server) writeHTML(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), config.ErrTemplateRender,
			config.LogKeyFile, name,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}
	w.Header().Set(config.HeaderContentType, config.MimeTextHTML)
	s.writeBody(w, r, buf.Bytes())
}

// writeCached serves a generated document with a content-hash ETag and
// answers 304 when the client already holds it.
func (s *Server) writeCached(w http.ResponseWriter, r *http.Request, data []byte, mime, filename string) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	w.Header().Set(config.HeaderContentType, mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, etag)
	if filename != "" {
		w.Header().Set(config.HeaderContentDisposition, fmt.Sprintf(config.FormatAttachment, filename))
	}

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	s.writeBody(w, r, data)
}

func (s *Server) writeBody(w http.ResponseWriter, r *http.Request, data []byte) {
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		s.logger.ErrorContext(r.Context(), config.ErrWriteResp, config.LogKeyError, err)
	}
}
