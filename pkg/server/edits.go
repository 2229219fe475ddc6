package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/layout"
)

// apply decodes req, runs fn against the screen's committed tree and writes
// the resulting view. A failed edit leaves the screen unchanged.
func apply[T any](s *Server, w http.ResponseWriter, r *http.Request, fn func(req T, e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error)) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	var req T
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	engine := s.mgr.Engine()
	err := scr.ApplyAt(func(t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
		return fn(req, engine, t, vps)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(scr))
}

type areaRequest struct {
	ID    string         `json:"id,omitempty"`
	Type  string         `json:"type,omitempty"`
	State map[string]any `json:"state,omitempty"`
}

func (a areaRequest) newArea() layout.NewArea {
	return layout.NewArea{ID: a.ID, Content: layout.Content{Type: a.Type, State: a.State}}
}

type splitRequest struct {
	ID          string             `json:"id"`
	Orientation layout.Orientation `json:"orientation"`
	Side        string             `json:"side,omitempty"`
}

func (s *Server) split(w http.ResponseWriter, r *http.Request) {
	apply(s, w, r, func(req splitRequest, e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
		side := layout.After
		if req.Side != "" {
			var ok bool
			if side, ok = layout.ParseSide(req.Side); !ok {
				return t, errors.New(errors.ErrCodeInvalidInput, "side must be before or after, got %q", req.Side)
			}
		}
		if err := e.CheckSplit(vps, req.ID, req.Orientation); err != nil {
			return t, err
		}
		return e.Split(t, req.ID, req.Orientation, side)
	})
}

type joinRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s *Server) join(w http.ResponseWriter, r *http.Request) {
	apply(s, w, r, func(req joinRequest, e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
		return e.Join(t, req.Source, req.Target)
	})
}

type removeRequest struct {
	ID string `json:"id"`
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	apply(s, w, r, func(req removeRequest, e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
		return e.RemoveLeaf(t, req.ID)
	})
}

type insertRequest struct {
	Target    string           `json:"target"`
	Placement layout.Placement `json:"placement"`
	Area      areaRequest      `json:"area"`
}

func (s *Server) insert(w http.ResponseWriter, r *http.Request) {
	apply(s, w, r, func(req insertRequest, e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
		return e.Insert(t, req.Target, req.Placement, req.Area.newArea())
	})
}

type moveRequest struct {
	Source    string           `json:"source"`
	Target    string           `json:"target"`
	Placement layout.Placement `json:"placement"`
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	apply(s, w, r, func(req moveRequest, e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
		return e.Move(t, req.Source, req.Target, req.Placement)
	})
}

type dropRequest struct {
	Point    geom.Point  `json:"point"`
	SourceID string      `json:"sourceId,omitempty"`
	Area     areaRequest `json:"area"`
}

func (s *Server) drop(w http.ResponseWriter, r *http.Request) {
	apply(s, w, r, func(req dropRequest, e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
		return e.PlaceAtDrop(t, vps, layout.Drop{SourceID: req.SourceID, Area: req.Area.newArea()}, req.Point)
	})
}

type resizeRequest struct {
	RowID string `json:"rowId"`
	Index int    `json:"index"`
	// Either Point (pointer position) or T (fraction of the separator span).
	Point *geom.Point `json:"point,omitempty"`
	T     *float64    `json:"t,omitempty"`
}

func (s *Server) resize(w http.ResponseWriter, r *http.Request) {
	apply(s, w, r, func(req resizeRequest, e *layout.Engine, t *layout.Tree, vps layout.Viewports) (*layout.Tree, error) {
		sep := layout.Separator{RowID: req.RowID, Index: req.Index}
		switch {
		case req.Point != nil:
			return e.ResizeAt(t, vps, sep, *req.Point)
		case req.T != nil:
			_, extent, err := layout.SeparatorSpan(t, vps, sep)
			if err != nil {
				return t, err
			}
			return e.Resize(t, sep, *req.T, extent)
		}
		return t, errors.New(errors.ErrCodeInvalidInput, "resize needs a point or t")
	})
}

type sizesRequest struct {
	Sizes []float64 `json:"sizes"`
}

func (s *Server) setSizes(w http.ResponseWriter, r *http.Request) {
	row := chi.URLParam(r, "row")
	apply(s, w, r, func(req sizesRequest, e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
		return e.SetChildSizes(t, row, req.Sizes)
	})
}

func (s *Server) setContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "area")
	apply(s, w, r, func(req layout.Content, e *layout.Engine, t *layout.Tree, _ layout.Viewports) (*layout.Tree, error) {
		return e.SetContent(t, id, req)
	})
}

func (s *Server) gc(w http.ResponseWriter, r *http.Request) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	var report layout.Report
	_ = scr.Apply(func(t *layout.Tree) (*layout.Tree, error) {
		out, rep := layout.GC(t)
		report = rep
		return out, nil
	})
	writeJSON(w, http.StatusOK, report)
}
