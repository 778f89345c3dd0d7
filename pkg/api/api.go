// Package api defines the JSON bodies exchanged by the hivectl query server
// and its client.
package api

import (
	"time"

	"github.com/joshuapare/hiverecon/internal/search"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// LoadRequest asks the server to parse a hive file on its own filesystem.
type LoadRequest struct {
	Path       string `json:"path"`
	Recover    bool   `json:"recover"`
	ReplayLogs bool   `json:"replay_logs"`
}

// LoadResponse summarises a successful load.
type LoadResponse struct {
	Path        string      `json:"path"`
	Stats       types.Stats `json:"stats"`
	Diagnostics int         `json:"diagnostics"`
}

// ErrorResponse carries a failed request's message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Key is a key with its values and the names of its subkeys.
type Key struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Class      string    `json:"class,omitempty"`
	LastWrite  time.Time `json:"last_write"`
	Offset     uint32    `json:"offset"`
	Deleted    bool      `json:"deleted,omitempty"`
	Reattached bool      `json:"reattached,omitempty"`
	SubKeys    []string  `json:"subkeys"`
	Values     []Value   `json:"values"`
}

// Value is one value with its data rendered as text.
type Value struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Length  int    `json:"length"`
	Offset  uint32 `json:"offset"`
	Deleted bool   `json:"deleted,omitempty"`
	Slack   int    `json:"slack,omitempty"`
	Text    string `json:"text"`
	Data    []byte `json:"data,omitempty"`
}

// Hit is one search result.
type Hit struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Value string `json:"value,omitempty"`
	Text  string `json:"text"`
}

// FromKey converts k, including its values and subkey names.
func FromKey(k *types.Key) Key {
	out := Key{
		Path:       k.Path(),
		Name:       k.Name,
		Class:      k.ClassName,
		LastWrite:  k.LastWrite,
		Offset:     k.Offset,
		Deleted:    k.Deleted(),
		Reattached: k.Deleted() && k.HasActiveParent(),
		SubKeys:    make([]string, 0, len(k.SubKeys)),
		Values:     make([]Value, 0, len(k.Values)),
	}
	for _, c := range k.SubKeys {
		out.SubKeys = append(out.SubKeys, c.Name)
	}
	for _, v := range k.Values {
		out.Values = append(out.Values, FromValue(v))
	}
	return out
}

// FromValue converts v.
func FromValue(v *types.Value) Value {
	return Value{
		Name:    v.Name,
		Type:    v.Type.String(),
		Length:  v.Length,
		Offset:  v.Offset,
		Deleted: v.Deleted,
		Slack:   len(v.Slack),
		Text:    v.Text(),
		Data:    v.Data(),
	}
}

// FromHit converts h.
func FromHit(h search.Hit) Hit {
	out := Hit{Kind: h.Kind.String(), Text: h.Text}
	if h.Key != nil {
		out.Path = h.Key.Path()
	}
	if h.Value != nil {
		out.Value = h.Value.DisplayName()
	}
	return out
}
