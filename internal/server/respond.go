package server

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/hive"
	"github.com/joshuapare/hiverecon/pkg/types"
)

type ctxKey struct{}

// requireHive pins the current hive for the whole request, so a concurrent
// load cannot change it half way through.
func (s *Server) requireHive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := s.session.Current()
		if h == nil {
			writeError(w, http.StatusConflict, errors.New("no hive loaded"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, h)))
	})
}

func current(r *http.Request) *hive.Hive {
	return r.Context().Value(ctxKey{}).(*hive.Hive)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, api.ErrorResponse{Error: err.Error()})
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var te *types.Error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &te) && te.Kind == types.ErrKindNotFound:
		return http.StatusNotFound
	case errors.As(err, &te):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
