// Package txlog reconciles a dirty hive with its transaction logs by
// writing logged pages back into the hive buffer.
package txlog

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Applied records one replayed log.
type Applied struct {
	Index   int // position in the caller's slice
	Format  format.LogFormat
	Entries int
	First   uint32 // log sequence
	Last    uint32 // sequence reached
	// Stopped is why decoding ended early, if it did.
	Stopped error
}

// Dropped records a log that was not replayed.
type Dropped struct {
	Index  int
	Reason string
}

// Report describes what a replay did.
type Report struct {
	Applied []Applied
	Dropped []Dropped
	// Sequence is the value written to both sequence fields.
	Sequence uint32
	DataSize uint32
	// HeaderRestored is set when the hive base block failed its checksum and
	// was rebuilt from the replayed log's base block.
	HeaderRestored bool
}

// String summarises the replay, one line per log.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "replay: %d applied, %d dropped, sequence %d, data size 0x%X\n",
		len(r.Applied), len(r.Dropped), r.Sequence, r.DataSize)
	for _, a := range r.Applied {
		fmt.Fprintf(&sb, "  [%d] %s log, %d entries, %d..%d", a.Index, a.Format, a.Entries, a.First, a.Last)
		if a.Stopped != nil {
			fmt.Fprintf(&sb, " (stopped: %v)", a.Stopped)
		}
		sb.WriteString("\n")
	}
	for _, d := range r.Dropped {
		fmt.Fprintf(&sb, "  [%d] dropped: %s\n", d.Index, d.Reason)
	}
	return sb.String()
}

// ErrTooLarge stops a log whose entry would grow the hive past the size limit.
var ErrTooLarge = errors.New("txlog: entry grows hive past size limit")

type candidate struct {
	index int
	raw   []byte
	log   *format.Log
}

// Replay applies logs to the hive in b, whose decoded header is hdr. Logs
// are ordered by content, so the result does not depend on the order they
// are supplied in. With applyInPlace the caller's buffer is patched; the
// returned slice is authoritative either way since a log may grow the hive.
// A positive maxSize caps the replayed hive's length; an entry that would
// exceed it stops its log.
func Replay(b []byte, hdr format.Header, logs [][]byte, applyInPlace bool, maxSize int64) ([]byte, *Report, error) {
	if len(logs) == 0 {
		return nil, nil, types.ErrNoLogs
	}
	if !hdr.Dirty() {
		return nil, nil, types.ErrNotDirty
	}

	rep := &Report{}
	var cands []candidate
	for i, raw := range logs {
		l, err := format.ParseLog(raw)
		if err != nil {
			rep.Dropped = append(rep.Dropped, Dropped{Index: i, Reason: err.Error()})
			continue
		}
		if !l.Header.IsLog() {
			rep.Dropped = append(rep.Dropped, Dropped{Index: i, Reason: fmt.Sprintf("file type %d is not a log", l.Header.Type)})
			continue
		}
		if !sameHive(hdr, l.Header) {
			return nil, nil, types.Wrap(types.ErrLogMismatch,
				fmt.Errorf("log %d names %q, hive names %q", i, l.Header.FileName, hdr.FileName))
		}
		if l.Sequence() < hdr.SecondarySequence {
			rep.Dropped = append(rep.Dropped, Dropped{Index: i, Reason: fmt.Sprintf(
				"sequence %d predates hive secondary %d", l.Sequence(), hdr.SecondarySequence)})
			continue
		}
		if len(l.Entries) == 0 {
			reason := "no entries"
			if l.Stopped != nil {
				reason = "no usable entries: " + l.Stopped.Error()
			}
			rep.Dropped = append(rep.Dropped, Dropped{Index: i, Reason: reason})
			continue
		}
		cands = append(cands, candidate{index: i, raw: raw, log: l})
	}
	if len(cands) == 0 {
		return nil, rep, types.ErrNoUsableLog
	}
	slices.SortFunc(cands, compareLogs)
	for _, c := range cands[min(len(cands), 2):] {
		rep.Dropped = append(rep.Dropped, Dropped{Index: c.index, Reason: "only the two oldest usable logs are considered"})
	}

	first, other := cands[0], (*candidate)(nil)
	if len(cands) > 1 {
		other = &cands[1]
		if !hdr.ChecksumOK() {
			first, other = cands[1], &cands[0]
		}
	}

	out := b
	if !applyInPlace {
		out = append([]byte(nil), b...)
	}
	if !hdr.ChecksumOK() {
		copy(out[:format.LogBaseBlockSize], first.raw[:format.LogBaseBlockSize])
		format.PutU32(out, format.REGFTypeOffset, format.FileTypePrimary)
		rep.HeaderRestored = true
	}

	rep.Sequence = hdr.SecondarySequence
	rep.DataSize = hdr.HiveBinsDataSize
	out = apply(out, first, maxSize, rep)
	if other != nil {
		if other.log.Sequence() == rep.Sequence+1 {
			out = apply(out, *other, maxSize, rep)
		} else {
			rep.Dropped = append(rep.Dropped, Dropped{Index: other.index, Reason: fmt.Sprintf(
				"sequence %d does not follow %d", other.log.Sequence(), rep.Sequence)})
		}
	}

	format.PutU32(out, format.REGFPrimarySeqOffset, rep.Sequence)
	format.PutU32(out, format.REGFSecondarySeqOffset, rep.Sequence)
	format.PutU32(out, format.REGFDataSizeOffset, rep.DataSize)
	format.PatchChecksum(out)
	return out, rep, nil
}

// apply writes every page of every entry of c into out, growing it when an
// entry extends the hive. Entries are applied whole: one that would need more
// than maxSize bytes stops the log before any of its pages are written.
func apply(out []byte, c candidate, maxSize int64, rep *Report) []byte {
	a := Applied{
		Index:   c.index,
		Format:  c.log.Format,
		First:   c.log.Sequence(),
		Last:    c.log.Sequence(),
		Stopped: c.log.Stopped,
	}
	for _, e := range c.log.Entries {
		need := entryEnd(e)
		if maxSize > 0 && need > maxSize {
			a.Stopped = fmt.Errorf("%w: entry %d needs %d bytes, limit %d", ErrTooLarge, e.Sequence, need, maxSize)
			break
		}
		out = grow(out, int(need))
		for _, p := range e.Pages {
			copy(out[format.HeaderSize+int(p.Offset):], p.Data)
		}
		rep.Sequence = e.Sequence
		rep.DataSize = e.HiveBinsDataSize
		a.Entries++
		a.Last = e.Sequence
	}
	rep.Applied = append(rep.Applied, a)
	return out
}

// entryEnd is the hive length an entry requires.
func entryEnd(e format.LogEntry) int64 {
	end := int64(format.HeaderSize) + int64(e.HiveBinsDataSize)
	for _, p := range e.Pages {
		end = max(end, int64(format.HeaderSize)+int64(p.Offset)+int64(len(p.Data)))
	}
	return end
}

func grow(b []byte, n int) []byte {
	if n <= len(b) {
		return b
	}
	return append(b, make([]byte, n-len(b))...)
}

// compareLogs orders logs by sequence numbers, then by content, so ties are
// broken the same way whatever order the logs arrive in.
func compareLogs(a, b candidate) int {
	return cmp.Or(
		cmp.Compare(a.log.Sequence(), b.log.Sequence()),
		cmp.Compare(a.log.Header.SecondarySequence, b.log.Header.SecondarySequence),
		cmp.Compare(len(a.raw), len(b.raw)),
		bytes.Compare(a.raw, b.raw),
	)
}

// sameHive compares the base names embedded in both base blocks. A missing
// name on either side is not a mismatch.
func sameHive(hive, log format.Header) bool {
	h, l := baseName(hive.FileName), baseName(log.FileName)
	return h == "" || l == "" || strings.EqualFold(h, l)
}

func baseName(p string) string {
	p = strings.TrimRight(p, `\`)
	if i := strings.LastIndexByte(p, '\\'); i >= 0 {
		p = p[i+1:]
	}
	return p
}
