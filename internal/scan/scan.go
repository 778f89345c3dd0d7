// Package scan walks the hive bins of a registry hive and builds flat maps of
// the key, value, security and list records they contain, keyed by cell
// index. It never fails on malformed records: anything it cannot decode is
// skipped and reported to the diagnostics collector.
package scan

import (
	"context"
	"errors"

	"github.com/joshuapare/hiverecon/internal/cells"
	"github.com/joshuapare/hiverecon/internal/diag"
	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Options controls a scan.
type Options struct {
	// CarveFree searches free cells for residual key and value records.
	CarveFree bool
	Diag      *diag.Collector
	Progress  types.ProgressFunc
}

// Result holds the flat record maps plus bin statistics. Buf is the hive
// buffer the records alias.
type Result struct {
	Buf   []byte
	Cells map[uint32]cells.Cell
	Lists map[uint32]*cells.List

	Bins          int
	DataCells     int
	Carved        int
	UsedBytes     int64
	FreeBytes     int64
	ScannedBytes  int64
	ExpectedBytes int64
	// Stopped is set when a bad bin header ended the walk early.
	Stopped bool
}

// Key returns the key cell at off, if one was found.
func (r *Result) Key(off uint32) (*cells.KeyCell, bool) {
	k, ok := r.Cells[off].(*cells.KeyCell)
	return k, ok
}

// Value returns the value cell at off, if one was found.
func (r *Result) Value(off uint32) (*cells.ValueCell, bool) {
	v, ok := r.Cells[off].(*cells.ValueCell)
	return v, ok
}

type scanner struct {
	res  *Result
	opts Options
}

// Scan walks every hive bin from the end of the base block while the offset
// is below the larger of the header's expected length and the buffer length.
func Scan(ctx context.Context, b []byte, hdr format.Header, opts Options) (*Result, error) {
	s := &scanner{
		res: &Result{
			Buf:           b,
			Cells:         make(map[uint32]cells.Cell),
			Lists:         make(map[uint32]*cells.List),
			ExpectedBytes: int64(hdr.ExpectedLength()),
			ScannedBytes:  format.HeaderSize,
		},
		opts: opts,
	}
	d := opts.Diag
	d.SetPhase(types.PhaseScan)

	limit := max(hdr.ExpectedLength(), len(b))
	span := float64(limit - format.HiveDataBase)
	s.progress(0)

	for off := format.HiveDataBase; off < limit; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		h, err := format.ParseHBIN(b, off)
		switch {
		case errors.Is(err, format.ErrSanityLimit):
			d.Warnf(types.DiagStructure, uint64(off), "hbin", "size 0x%X is not page aligned", h.Size)
			h.Size = uint32(format.AlignUp(int(h.Size), format.HBINAlignment))
		case err != nil:
			d.Warnf(types.DiagStructure, uint64(off), "hbin", "page scan stopped: %v", err)
			s.res.Stopped = true
		}
		if s.res.Stopped {
			break
		}
		if h.Size == 0 {
			d.Infof(types.DiagStructure, uint64(off), "hbin", "zero page size, skipping one page")
			off += format.HBINAlignment
			s.res.ScannedBytes += format.HBINAlignment
			continue
		}
		if want := uint32(off - format.HiveDataBase); h.RelOffset != want {
			d.Mismatch(types.DiagConsistency, uint64(off), "hbin", "bin offset field disagrees with position", want, h.RelOffset)
		}
		end := h.End()
		clamped := end > len(b)
		if clamped {
			d.Warnf(types.DiagStructure, uint64(off), "hbin", "bin of 0x%X bytes overruns file", h.Size)
			end = len(b)
		}
		s.bin(off, end)
		s.res.Bins++
		s.res.ScannedBytes += int64(end - off)
		if clamped {
			break
		}
		off = end
		s.progress(float64(off-format.HiveDataBase) / span)
	}

	if s.res.ScannedBytes != s.res.ExpectedBytes {
		d.Mismatch(types.DiagConsistency, 0, "regf", "scanned bytes differ from header length",
			s.res.ExpectedBytes, s.res.ScannedBytes)
	}
	s.progress(1)
	return s.res, nil
}

// bin decodes every cell between the bin header and end.
func (s *scanner) bin(off, end int) {
	b := s.res.Buf
	for c := off + format.HBINHeaderSize; c < end; {
		cell, next, err := format.NextCell(b, c, end)
		if err != nil {
			s.opts.Diag.Warnf(types.DiagStructure, uint64(c), "cell", "rest of bin skipped: %v", err)
			return
		}
		if cell.Free {
			s.res.FreeBytes += int64(cell.Size)
		} else {
			s.res.UsedBytes += int64(cell.Size)
		}
		s.register(cell)
		if cell.Free && s.opts.CarveFree {
			s.carve(cell)
		}
		c = next
	}
}

// register adds a decoded record to the maps. Free cells are kept with their
// free flag; their decode failures are expected and not reported.
func (s *scanner) register(c format.Cell) {
	tag := c.TagString()
	switch {
	case tag == "nk" || tag == "vk" || tag == "sk":
		rec, err := cells.Decode(c)
		if err != nil {
			if !c.Free {
				s.opts.Diag.Warnf(types.DiagStructure, uint64(c.Offset), tag, "record skipped: %v", err)
			}
			return
		}
		s.res.Cells[c.Rel()] = rec
	case format.IsListTag(tag):
		lr, err := format.DecodeList(c.Data)
		if err != nil && !c.Free {
			s.opts.Diag.Warnf(types.DiagStructure, uint64(c.Offset), tag, "list: %v", err)
		}
		if lr.Tag != "" {
			s.res.Lists[c.Rel()] = cells.NewList(c.Rel(), c.Free, lr)
		}
	default:
		s.res.DataCells++
	}
}

func (s *scanner) progress(f float64) {
	if s.opts.Progress != nil {
		s.opts.Progress(types.Progress{Phase: types.PhaseScan, Fraction: min(f, 1)})
	}
}
