package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/hive"
)

const (
	defaultLimit = 1000
	maxLimit     = 100000
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok", "loaded": false}
	if h := s.session.Current(); h != nil {
		status["loaded"] = true
		status["path"] = h.Path()
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) loadHive(w http.ResponseWriter, r *http.Request) {
	var req api.LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	opts := s.defaults
	opts.Recover = req.Recover
	opts.ReplayLogs = req.ReplayLogs

	h, err := s.session.Load(r.Context(), req.Path, opts)
	if err != nil {
		s.log.Warn("load failed", "path", req.Path, "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, api.LoadResponse{
		Path:        h.Path(),
		Stats:       h.Stats(),
		Diagnostics: len(h.Diagnostics().Diagnostics),
	})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Info())
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Stats())
}

func (s *Server) diagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Diagnostics())
}

func (s *Server) rootKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.FromKey(current(r).Root()))
}

func (s *Server) keyByPath(w http.ResponseWriter, r *http.Request) {
	k, err := current(r).Key(r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromKey(k))
}

func (s *Server) keyByOffset(w http.ResponseWriter, r *http.Request) {
	off, err := strconv.ParseUint(chi.URLParam(r, "offset"), 0, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("offset: %w", err))
		return
	}
	k, err := current(r).KeyByOffset(uint32(off))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromKey(k))
}

func (s *Server) deleted(w http.ResponseWriter, r *http.Request) {
	h := current(r)
	out := struct {
		Keys         []api.Key   `json:"keys"`
		Unassociated []api.Value `json:"unassociated"`
	}{Keys: []api.Key{}, Unassociated: []api.Value{}}
	for _, k := range h.Deleted() {
		out.Keys = append(out.Keys, api.FromKey(k))
	}
	for _, v := range h.Unassociated() {
		out.Unassociated = append(out.Unassociated, api.FromValue(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) searchText(w http.ResponseWriter, r *http.Request) {
	kind, err := hive.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	q := r.URL.Query()
	if q.Get("q") == "" {
		writeError(w, http.StatusBadRequest, errors.New("q is required"))
		return
	}
	regex, _ := strconv.ParseBool(q.Get("regex"))
	hits, err := current(r).Search(kind, q.Get("q"), regex)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeHits(w, r, hits)
}

func (s *Server) searchSize(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("min"))
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, errors.New("min must be a non-negative integer"))
		return
	}
	writeHits(w, r, current(r).ValueSize(n))
}

func (s *Server) searchTime(w http.ResponseWriter, r *http.Request) {
	var tr hive.TimeRange
	for name, dst := range map[string]*time.Time{"after": &tr.After, "before": &tr.Before} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = t
	}
	writeHits(w, r, current(r).LastWrite(tr))
}

func (s *Server) searchExpand(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("pattern")
	if p == "" {
		writeError(w, http.StatusBadRequest, errors.New("pattern is required"))
		return
	}
	writeHits(w, r, current(r).Expand(p))
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := current(r).ExportText(w); err != nil {
		s.log.Warn("export failed", "error", err)
	}
}

// writeHits collects at most limit hits, default 1000.
func writeHits(w http.ResponseWriter, r *http.Request, hits iter.Seq[hive.Hit]) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxLimit {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be in 1..%d", maxLimit))
			return
		}
		limit = n
	}
	out := []api.Hit{}
	for h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, api.FromHit(h))
	}
	writeJSON(w, http.StatusOK, out)
}
