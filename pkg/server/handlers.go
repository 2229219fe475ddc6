package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/gesture"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/render"
	"github.com/matzehuels/karmyc/pkg/screen"
)

// screenView is the full state of a screen as seen by a renderer.
type screenView struct {
	Name      string           `json:"name"`
	Version   uint64           `json:"version"`
	Bounds    geom.Rect        `json:"bounds"`
	Resizing  bool             `json:"resizing"`
	Layout    *layout.Tree     `json:"layout"`
	Viewports layout.Viewports `json:"viewports"`
	Gesture   gesture.State    `json:"gesture"`
}

func viewOf(scr *screen.Screen) screenView {
	tree, vps, version := scr.Snapshot()
	return screenView{
		Name:      scr.Name(),
		Version:   version,
		Bounds:    scr.Bounds(),
		Resizing:  scr.Resizing(),
		Layout:    tree,
		Viewports: vps,
		Gesture:   scr.Controller().State(),
	}
}

func (s *Server) screen(w http.ResponseWriter, r *http.Request) (*screen.Screen, bool) {
	scr, err := s.mgr.Get(chi.URLParam(r, "screen"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return scr, true
}

// =============================================================================
// Screens
// =============================================================================

func (s *Server) listScreens(w http.ResponseWriter, r *http.Request) {
	stored, err := s.mgr.Stored(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"screens": s.mgr.List(),
		"stored":  stored,
	})
}

type createRequest struct {
	Name   string          `json:"name"`
	Layout json.RawMessage `json:"layout,omitempty"`
}

func (s *Server) createScreen(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	var tree *layout.Tree
	if len(req.Layout) > 0 {
		t, err := layout.Unmarshal(req.Layout)
		if err != nil {
			s.writeError(w, err)
			return
		}
		tree = t
	}
	scr, err := s.mgr.Create(req.Name, tree)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(scr))
}

func (s *Server) getScreen(w http.ResponseWriter, r *http.Request) {
	if scr, ok := s.screen(w, r); ok {
		writeJSON(w, http.StatusOK, viewOf(scr))
	}
}

func (s *Server) deleteScreen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "screen")
	var err error
	if r.URL.Query().Get("forget") == "true" {
		err = s.mgr.Forget(r.Context(), name)
	} else {
		err = s.mgr.Delete(name)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := layout.Write(scr.Tree(), w); err != nil {
		s.logger.Warn("write layout", "err", err)
	}
}

func (s *Server) replaceLayout(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read layout"))
		return
	}
	tree, err := layout.Unmarshal(data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	scr.Replace(tree)
	writeJSON(w, http.StatusOK, viewOf(scr))
}

func (s *Server) setBounds(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	var b geom.Rect
	if err := decode(w, r, &b); err != nil {
		s.writeError(w, err)
		return
	}
	if b.IsEmpty() {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "bounds must have positive width and height"))
		return
	}
	scr.SetBounds(b)
	writeJSON(w, http.StatusOK, viewOf(scr))
}

func (s *Server) getViewports(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	tree, vps, _ := scr.Snapshot()
	if r.URL.Query().Get("leaves") == "true" {
		vps = vps.Leaves(tree)
	}
	writeJSON(w, http.StatusOK, vps)
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	tree, vps, _ := scr.Snapshot()
	opts := []render.SVGOption{render.WithSeparators(), render.WithPreview(scr.Controller().State())}
	if gap, err := strconv.ParseFloat(r.URL.Query().Get("gap"), 64); err == nil {
		opts = append(opts, render.WithGap(gap))
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(render.RenderSVG(tree, vps, opts...))
}

func (s *Server) saveScreen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "screen")
	if err := s.mgr.Save(r.Context(), name); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) openScreen(w http.ResponseWriter, r *http.Request) {
	scr, err := s.mgr.Open(r.Context(), chi.URLParam(r, "screen"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(scr))
}
