// Package server exposes screens over HTTP so a browser renderer can read
// viewports and dispatch edits and pointer gestures.
//
// All bodies are JSON. Errors are returned as
//
//	{"error": {"code": "NODE_NOT_FOUND", "message": "area \"x\" does not exist"}}
//
// with a status derived from the code: 400 for invalid input, 404 for missing
// nodes and screens, 409 for edits that resolve to a no-op, 502 for storage
// failures.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/karmyc/pkg/buildinfo"
	kerrors "github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/screen"
)

// maxBodyBytes bounds request bodies, including uploaded snapshots.
const maxBodyBytes = 4 << 20

// Server serves a screen manager.
type Server struct {
	mgr    *screen.Manager
	logger *log.Logger
	router chi.Router
}

// New creates a server for mgr.
func New(mgr *screen.Manager, logger *log.Logger) *Server {
	if logger == nil {
		logger = mgr.Engine().Logger()
	}
	s := &Server{mgr: mgr, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version, "commit": buildinfo.Commit})
	})

	r.Route("/screens", func(r chi.Router) {
		r.Get("/", s.listScreens)
		r.Post("/", s.createScreen)

		r.Route("/{screen}", func(r chi.Router) {
			r.Get("/", s.getScreen)
			r.Delete("/", s.deleteScreen)
			r.Put("/layout", s.replaceLayout)
			r.Get("/layout", s.getLayout)
			r.Put("/bounds", s.setBounds)
			r.Get("/viewports", s.getViewports)
			r.Get("/svg", s.getSVG)
			r.Post("/save", s.saveScreen)
			r.Post("/open", s.openScreen)

			r.Post("/split", s.split)
			r.Post("/join", s.join)
			r.Post("/remove", s.remove)
			r.Post("/insert", s.insert)
			r.Post("/move", s.move)
			r.Post("/drop", s.drop)
			r.Post("/resize", s.resize)
			r.Post("/gc", s.gc)
			r.Put("/rows/{row}/sizes", s.setSizes)
			r.Put("/areas/{area}/content", s.setContent)

			r.Route("/gesture", func(r chi.Router) {
				r.Get("/", s.gestureState)
				r.Post("/corner", s.beginCorner)
				r.Post("/separator", s.beginSeparator)
				r.Post("/move", s.gestureMove)
				r.Post("/release", s.gestureRelease)
				r.Post("/cancel", s.gestureCancel)
				r.Post("/hover", s.gestureHover)
				r.Post("/leave", s.gestureLeave)
			})
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// =============================================================================
// Encoding helpers
// =============================================================================

type errorBody struct {
	Error struct {
		Code    kerrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := kerrors.GetCode(err)
	if code == "" {
		code = kerrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "err", err)
	}
	var body errorBody
	body.Error.Code = code
	body.Error.Message = kerrors.UserMessage(err)
	writeJSON(w, status, body)
}

func statusFor(code kerrors.Code) int {
	switch code {
	case kerrors.ErrCodeInvalidInput, kerrors.ErrCodeInvalidID, kerrors.ErrCodeInvalidLayout,
		kerrors.ErrCodeInvalidReference, kerrors.ErrCodeInvalidRoot, kerrors.ErrCodeInvalidSize,
		kerrors.ErrCodeInvalidPlacement:
		return http.StatusBadRequest
	case kerrors.ErrCodeNotFound, kerrors.ErrCodeNodeNotFound, kerrors.ErrCodeScreenNotFound:
		return http.StatusNotFound
	case kerrors.ErrCodeAreaTooSmall, kerrors.ErrCodeSelfDrop, kerrors.ErrCodeNotSiblings,
		kerrors.ErrCodeGestureAborted:
		return http.StatusConflict
	case kerrors.ErrCodeStorage:
		return http.StatusBadGateway
	case kerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
