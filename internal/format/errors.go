package format

import "errors"

var (
	// ErrSignatureMismatch indicates a structure had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrFreeCell indicates a free cell was found where an allocated one was required.
	ErrFreeCell = errors.New("format: cell not in use")
	// ErrSanityLimit indicates a count or length field beyond any plausible value.
	ErrSanityLimit = errors.New("format: value exceeds sanity limit")
	// ErrUnsupported indicates a recognised structure this package cannot decode.
	ErrUnsupported = errors.New("format: unsupported feature")
	// ErrBadHash indicates a log entry whose stored hash does not match its bytes.
	ErrBadHash = errors.New("format: log entry hash mismatch")
)
