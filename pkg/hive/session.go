package hive

import (
	"context"
	"sync/atomic"

	"github.com/joshuapare/hiverecon/pkg/types"
)

// Session holds the hive a long-running process is working on. Loading a
// new hive replaces the current one only once the load has succeeded;
// callers still holding the old *Hive keep a consistent, if stale, view.
type Session struct {
	cur atomic.Pointer[Hive]
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Load parses path and makes it current. On error the current hive is kept.
func (s *Session) Load(ctx context.Context, path string, opts types.LoadOptions) (*Hive, error) {
	h, err := Load(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	s.cur.Store(h)
	return h, nil
}

// Current returns the current hive, or nil before the first load.
func (s *Session) Current() *Hive {
	return s.cur.Load()
}

// Close drops the current hive.
func (s *Session) Close() {
	s.cur.Store(nil)
}
