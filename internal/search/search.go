// Package search runs queries over a reconstructed key index. Every query
// returns a lazy iter.Seq that walks a sorted snapshot of the index, so a
// sequence can be ranged over any number of times and stops as soon as the
// caller does.
package search

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Kind says which predicate produced a hit.
type Kind int

const (
	KeyName Kind = iota
	ValueName
	ValueData
	ValueSlack
	ValueSize
	LastWrite
	PathMatch
)

func (k Kind) String() string {
	switch k {
	case KeyName:
		return "key"
	case ValueName:
		return "value"
	case ValueData:
		return "data"
	case ValueSlack:
		return "slack"
	case ValueSize:
		return "size"
	case LastWrite:
		return "time"
	case PathMatch:
		return "path"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts a kind's String form or its plural, e.g. "key" or "keys".
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSuffix(strings.ToLower(s), "s")
	for k := KeyName; k <= PathMatch; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown search kind %q", s)
}

func (k Kind) MarshalJSON() ([]byte, error) { return json.Marshal(k.String()) }

// Hit is one match. Value is nil for key-level hits; Text is the text that
// matched, or a rendering of the matched property.
type Hit struct {
	Key   *types.Key
	Value *types.Value
	Text  string
	Kind  Kind
}

// TimeRange bounds a last-write query. A zero bound is open, so After alone
// selects keys written after it, Before alone keys written before it and
// both keys written within them. Bounds are inclusive.
type TimeRange struct {
	After  time.Time
	Before time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.After.IsZero() && t.Before(r.After) {
		return false
	}
	if !r.Before.IsZero() && t.After(r.Before) {
		return false
	}
	return true
}

// Engine answers queries over a fixed set of keys.
type Engine struct {
	keys []*types.Key
}

// New snapshots byPath in path order. Later changes to the map are not seen.
func New(byPath map[string]*types.Key) *Engine {
	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	e := &Engine{keys: make([]*types.Key, len(paths))}
	for i, p := range paths {
		e.keys[i] = byPath[p]
	}
	return e
}

// Len is the number of keys searched.
func (e *Engine) Len() int { return len(e.keys) }

// KeyNames yields keys whose name matches.
func (e *Engine) KeyNames(m Matcher) iter.Seq[Hit] {
	return e.keyHits(KeyName, func(k *types.Key) (string, bool) {
		return k.Name, m.Match(k.Name)
	})
}

// ValueNames yields values whose name matches. The default value matches by
// its display name.
func (e *Engine) ValueNames(m Matcher) iter.Seq[Hit] {
	return e.valueHits(ValueName, func(v *types.Value) (string, bool) {
		n := v.DisplayName()
		return n, m.Match(n)
	})
}

// ValueData yields values whose data matches. Text types are matched on
// their decoded string; everything else is matched on its rendering and on
// its bytes read both as Windows-1252 and as UTF-16LE.
func (e *Engine) ValueData(m Matcher) iter.Seq[Hit] {
	return e.valueHits(ValueData, func(v *types.Value) (string, bool) {
		if v.Type.IsText() {
			s := v.Text()
			return s, m.Match(s)
		}
		return firstMatch(m, v.Text(), format.DecodeWindows1252(v.Raw), format.DecodeUTF16LE(v.Raw))
	})
}

// ValueSlack yields values whose slack matches, read both as Windows-1252
// and as UTF-16LE.
func (e *Engine) ValueSlack(m Matcher) iter.Seq[Hit] {
	return e.valueHits(ValueSlack, func(v *types.Value) (string, bool) {
		if len(v.Slack) == 0 {
			return "", false
		}
		return firstMatch(m, format.DecodeWindows1252(v.Slack), format.DecodeUTF16LE(v.Slack))
	})
}

// ValueSize yields values whose declared length is at least minLen bytes.
func (e *Engine) ValueSize(minLen int) iter.Seq[Hit] {
	return e.valueHits(ValueSize, func(v *types.Value) (string, bool) {
		return strconv.Itoa(v.Length), v.Length >= minLen
	})
}

// LastWrite yields keys whose last write time falls in r.
func (e *Engine) LastWrite(r TimeRange) iter.Seq[Hit] {
	return e.keyHits(LastWrite, func(k *types.Key) (string, bool) {
		return k.LastWrite.UTC().Format(time.RFC3339), r.Contains(k.LastWrite)
	})
}

// Expand yields keys whose full path matches a wildcard pattern such as
// `Software\*\Run`. Matching is anchored at both ends and ignores case.
func (e *Engine) Expand(pattern string) iter.Seq[Hit] {
	re := expandPattern(pattern)
	return e.keyHits(PathMatch, func(k *types.Key) (string, bool) {
		p := k.Path()
		return p, re.MatchString(p)
	})
}

func (e *Engine) keyHits(kind Kind, pred func(*types.Key) (string, bool)) iter.Seq[Hit] {
	return func(yield func(Hit) bool) {
		for _, k := range e.keys {
			if text, ok := pred(k); ok && !yield(Hit{Key: k, Text: text, Kind: kind}) {
				return
			}
		}
	}
}

func (e *Engine) valueHits(kind Kind, pred func(*types.Value) (string, bool)) iter.Seq[Hit] {
	return func(yield func(Hit) bool) {
		for _, k := range e.keys {
			for _, v := range k.Values {
				if text, ok := pred(v); ok && !yield(Hit{Key: k, Value: v, Text: text, Kind: kind}) {
					return
				}
			}
		}
	}
}

func firstMatch(m Matcher, texts ...string) (string, bool) {
	for _, s := range texts {
		if s != "" && m.Match(s) {
			return s, true
		}
	}
	return "", false
}
