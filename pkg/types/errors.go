package types

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat      ErrKind = iota // malformed headers/signatures (e.g., bad "regf")
	ErrKindCorrupt                    // structural corruption (bad sizes/offsets/tags)
	ErrKindUnsupported                // valid feature we don't support
	ErrKindNotFound                   // missing key/value/path
	ErrKindType                       // requested decode doesn't match value RegType
	ErrKindState                      // operation invalid for the current state (e.g., clean hive)
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindType:
		return "type"
	case ErrKindState:
		return "state"
	}
	return "unknown"
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error with the same kind and message, so a wrapped
// copy of a sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

// Wrap returns a copy of sentinel carrying cause.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Msg: sentinel.Msg, Err: cause}
}

// Sentinels returned by the engine. All of them abort a load.
var (
	// ErrNotHive indicates the file lacks a valid "regf" header.
	ErrNotHive = &Error{Kind: ErrKindFormat, Msg: "not a registry hive (bad regf header)"}
	// ErrCorrupt indicates non-recoverable structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt hive structure"}
	// ErrUnsupported indicates a recognized but unsupported feature/variant.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported hive feature"}
	// ErrNotFound indicates a missing key/value/path.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrTypeMismatch indicates the requested decode doesn't match the value type.
	ErrTypeMismatch = &Error{Kind: ErrKindType, Msg: "registry value has different type"}
	// ErrNoRoot indicates neither the header nor any key cell names a root key.
	ErrNoRoot = &Error{Kind: ErrKindCorrupt, Msg: "root key not found"}
	// ErrNoLogs indicates replay was requested without any transaction log.
	ErrNoLogs = &Error{Kind: ErrKindState, Msg: "no transaction logs supplied"}
	// ErrNotDirty indicates replay was requested on a hive whose sequence numbers agree.
	ErrNotDirty = &Error{Kind: ErrKindState, Msg: "hive is not dirty"}
	// ErrNoUsableLog indicates every supplied log was stale or undecodable.
	ErrNoUsableLog = &Error{Kind: ErrKindState, Msg: "no usable transaction log"}
	// ErrLogMismatch indicates a log that belongs to a different hive.
	ErrLogMismatch = &Error{Kind: ErrKindFormat, Msg: "transaction log does not match hive"}
)
