package hive

import "github.com/joshuapare/hiverecon/internal/search"

// Search types re-exported for callers outside this module.
type (
	Hit       = search.Hit
	Kind      = search.Kind
	Matcher   = search.Matcher
	TimeRange = search.TimeRange
)

const (
	KeyName    = search.KeyName
	ValueName  = search.ValueName
	ValueData  = search.ValueData
	ValueSlack = search.ValueSlack
	ValueSize  = search.ValueSize
	LastWrite  = search.LastWrite
	PathMatch  = search.PathMatch
)

var (
	// Substring matches text containing a query, ignoring case.
	Substring = search.Substring
	// Regexp matches text against an expression, ignoring case.
	Regexp = search.Regexp
	// ParseKind resolves a kind name such as "keys" or "data".
	ParseKind = search.ParseKind
)
