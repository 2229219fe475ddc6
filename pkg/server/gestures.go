package server

import (
	"net/http"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/gesture"
	"github.com/matzehuels/karmyc/pkg/layout"
)

// runGesture decodes req and runs fn against the screen's controller. No-op
// outcomes such as an aborted drag are reported in the view, not as errors.
func runGesture[T any](s *Server, w http.ResponseWriter, r *http.Request, fn func(req T, c *gesture.Controller) error) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	var req T
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := fn(req, scr.Controller()); err != nil && !errors.IsNoop(err) {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(scr))
}

func (s *Server) gestureState(w http.ResponseWriter, r *http.Request) {
	if scr, ok := s.screen(w, r); ok {
		writeJSON(w, http.StatusOK, scr.Controller().State())
	}
}

type cornerRequest struct {
	Area   string     `json:"area"`
	Corner string     `json:"corner"`
	Point  geom.Point `json:"point"`
}

func (s *Server) beginCorner(w http.ResponseWriter, r *http.Request) {
	runGesture(s, w, r, func(req cornerRequest, c *gesture.Controller) error {
		corner, ok := gesture.ParseCorner(req.Corner)
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "unknown corner %q (want ne, nw, se or sw)", req.Corner)
		}
		return c.BeginCornerDrag(req.Area, corner, req.Point)
	})
}

type separatorRequest struct {
	RowID string     `json:"rowId"`
	Index int        `json:"index"`
	Point geom.Point `json:"point"`
}

func (s *Server) beginSeparator(w http.ResponseWriter, r *http.Request) {
	runGesture(s, w, r, func(req separatorRequest, c *gesture.Controller) error {
		return c.BeginSeparatorDrag(layout.Separator{RowID: req.RowID, Index: req.Index}, req.Point)
	})
}

func (s *Server) gestureMove(w http.ResponseWriter, r *http.Request) {
	runGesture(s, w, r, func(p geom.Point, c *gesture.Controller) error {
		return c.Move(p)
	})
}

func (s *Server) gestureRelease(w http.ResponseWriter, r *http.Request) {
	runGesture(s, w, r, func(p geom.Point, c *gesture.Controller) error {
		return c.Release(p)
	})
}

func (s *Server) gestureHover(w http.ResponseWriter, r *http.Request) {
	runGesture(s, w, r, func(p geom.Point, c *gesture.Controller) error {
		_, err := c.HoverDrop(p)
		return err
	})
}

func (s *Server) gestureCancel(w http.ResponseWriter, r *http.Request) {
	s.withController(w, r, (*gesture.Controller).Cancel)
}

func (s *Server) gestureLeave(w http.ResponseWriter, r *http.Request) {
	s.withController(w, r, (*gesture.Controller).LeaveDrop)
}

func (s *Server) withController(w http.ResponseWriter, r *http.Request, fn func(*gesture.Controller)) {
	scr, ok := s.screen(w, r)
	if !ok {
		return
	}
	fn(scr.Controller())
	writeJSON(w, http.StatusOK, viewOf(scr))
}
