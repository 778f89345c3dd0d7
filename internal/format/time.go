package format

import "time"

const (
	filetimeEpochDelta = 116444736000000000 // 1601-01-01 to 1970-01-01 in 100ns ticks
	filetimeTick       = 100
)

// FiletimeToTime converts a Windows FILETIME to UTC. Zero maps to the zero
// time so callers can tell "never written" apart from the Unix epoch.
func FiletimeToTime(v uint64) time.Time {
	if v == 0 {
		return time.Time{}
	}
	if v <= filetimeEpochDelta {
		return time.Unix(0, 0).UTC()
	}
	ticks := v - filetimeEpochDelta
	sec := int64(ticks / 10_000_000)
	nsec := int64(ticks%10_000_000) * filetimeTick
	return time.Unix(sec, nsec).UTC()
}

// TimeToFiletime converts t to a Windows FILETIME.
func TimeToFiletime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	ns := t.UnixNano()
	if ns < 0 {
		ns = 0
	}
	return uint64(ns)/filetimeTick + filetimeEpochDelta
}
