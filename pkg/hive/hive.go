package hive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/hiverecon/internal/diag"
	"github.com/joshuapare/hiverecon/internal/format"
	"github.com/joshuapare/hiverecon/internal/logger"
	"github.com/joshuapare/hiverecon/internal/mmfile"
	"github.com/joshuapare/hiverecon/internal/recovery"
	"github.com/joshuapare/hiverecon/internal/scan"
	"github.com/joshuapare/hiverecon/internal/search"
	"github.com/joshuapare/hiverecon/internal/tree"
	"github.com/joshuapare/hiverecon/internal/txlog"
	"github.com/joshuapare/hiverecon/pkg/types"
)

// Hive is a fully parsed registry hive. It keeps the reconstructed tree and
// its indices; the flat record maps of the scan are released after loading.
type Hive struct {
	path   string
	header format.Header

	root     *types.Key
	byPath   map[string]*types.Key
	byOffset map[uint32]*types.Key
	engine   *search.Engine

	attached     []*types.Key
	forest       []*types.Key
	unassociated []*types.Value

	stats  types.Stats
	report *types.DiagnosticReport
}

// Load reads the hive file at path and parses it. With opts.ReplayLogs set
// and no logs given, <path>.LOG1, <path>.LOG2 and <path>.LOG are used when
// present.
func Load(ctx context.Context, path string, opts types.LoadOptions) (*Hive, error) {
	buf, err := mmfile.Load(path, opts.MaxHiveSize)
	if err != nil {
		if errors.Is(err, mmfile.ErrTooLarge) {
			return nil, wrapFormatErr(err)
		}
		return nil, fmt.Errorf("read hive: %w", err)
	}
	var logs [][]byte
	if opts.ReplayLogs {
		paths := opts.LogPaths
		if len(paths) == 0 && len(opts.LogData) == 0 {
			paths = DiscoverLogs(path)
		}
		for _, p := range paths {
			b, err := mmfile.Load(p, opts.MaxHiveSize)
			if err != nil {
				return nil, fmt.Errorf("read log: %w", err)
			}
			logs = append(logs, b)
		}
	}
	h, err := parse(ctx, buf, append(logs, opts.LogData...), opts)
	if err != nil {
		return nil, err
	}
	h.path = path
	return h, nil
}

// LoadBytes parses a hive held in memory. The buffer is copied, so the
// caller may reuse it.
func LoadBytes(ctx context.Context, b []byte, opts types.LoadOptions) (*Hive, error) {
	if opts.MaxHiveSize > 0 && int64(len(b)) > opts.MaxHiveSize {
		return nil, wrapFormatErr(fmt.Errorf("%d bytes: %w", len(b), mmfile.ErrTooLarge))
	}
	return parse(ctx, bytes.Clone(b), opts.LogData, opts)
}

// parse owns buf and may patch it during replay.
func parse(ctx context.Context, buf []byte, logs [][]byte, opts types.LoadOptions) (*Hive, error) {
	log := logger.Or(opts.Logger)
	hdr, err := format.ParseHeader(buf)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	d := diag.New(log, int64(len(buf)))
	progress := monotonic(opts.Progress)

	replayed := 0
	if hdr.Dirty() {
		switch {
		case opts.ReplayLogs && len(logs) > 0:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			d.SetPhase(types.PhaseReplay)
			out, rep, err := txlog.Replay(buf, hdr, logs, true, opts.MaxHiveSize)
			reportReplay(d, rep)
			if err != nil {
				return nil, err
			}
			buf, replayed = out, len(rep.Applied)
			if hdr, err = format.ParseHeader(buf); err != nil {
				return nil, wrapFormatErr(err)
			}
			progress(types.Progress{Phase: types.PhaseReplay, Fraction: 1})
		default:
			d.Warnf(types.DiagIntegrity, format.REGFPrimarySeqOffset, "regf",
				"hive is dirty (primary %d, secondary %d) and no logs were replayed",
				hdr.PrimarySequence, hdr.SecondarySequence)
		}
	}
	if !hdr.ChecksumOK() {
		d.Mismatch(types.DiagIntegrity, format.REGFCheckSumOffset, "regf", "header checksum mismatch",
			hdr.ComputedChecksum, hdr.Checksum)
	}

	d.SetPhase(types.PhaseScan)
	res, err := scan.Scan(ctx, buf, hdr, scan.Options{CarveFree: opts.Recover, Diag: d, Progress: progress})
	if err != nil {
		return nil, err
	}

	d.SetPhase(types.PhaseBuild)
	t, err := tree.Build(ctx, res, hdr, tree.Options{Recover: opts.Recover, Diag: d, Progress: progress})
	if err != nil {
		return nil, err
	}

	h := &Hive{
		header:   hdr,
		root:     t.Root,
		byPath:   t.ByPath,
		byOffset: t.ByOffset,
	}
	if opts.Recover {
		d.SetPhase(types.PhaseRecover)
		rr, err := recovery.Recover(ctx, res, t, recovery.Options{Diag: d, Progress: progress})
		if err != nil {
			return nil, err
		}
		h.attached, h.forest, h.unassociated = rr.Attached, rr.Forest, rr.Unassociated
	}

	d.SetPhase(types.PhaseIndex)
	h.engine = search.New(h.byPath)
	progress(types.Progress{Phase: types.PhaseIndex, Fraction: 1})

	h.stats = h.count(res, replayed)
	h.report = d.Report()
	h.report.Finalize()
	h.stats.Diagnostics = len(h.report.Diagnostics)

	log.Info("hive loaded",
		slog.String("file_name", hdr.FileName),
		slog.Int("keys", h.stats.Keys),
		slog.Int("values", h.stats.Values),
		slog.Int("deleted_keys", h.stats.DeletedKeys),
		slog.Int("count", h.stats.Diagnostics))
	return h, nil
}

func reportReplay(d *diag.Collector, rep *txlog.Report) {
	if rep == nil {
		return
	}
	for _, a := range rep.Applied {
		d.Infof(types.DiagLog, 0, "log", "log %d: %s format, %d entries, sequence %d to %d",
			a.Index, a.Format, a.Entries, a.First, a.Last)
		if a.Stopped != nil {
			d.Warnf(types.DiagLog, 0, "log", "log %d: decoding stopped early: %v", a.Index, a.Stopped)
		}
	}
	for _, x := range rep.Dropped {
		d.Warnf(types.DiagLog, 0, "log", "log %d dropped: %s", x.Index, x.Reason)
	}
	if rep.HeaderRestored {
		d.Warnf(types.DiagIntegrity, format.REGFCheckSumOffset, "regf", "base block failed its checksum and was restored from the log")
	}
}

// monotonic drops updates that would move a phase backwards.
func monotonic(fn types.ProgressFunc) types.ProgressFunc {
	if fn == nil {
		return func(types.Progress) {}
	}
	last := map[types.Phase]float64{}
	return func(p types.Progress) {
		if prev, ok := last[p.Phase]; ok && p.Fraction < prev {
			return
		}
		last[p.Phase] = p.Fraction
		fn(p)
	}
}

func (h *Hive) count(res *scan.Result, replayed int) types.Stats {
	s := types.Stats{
		FileSize:           int64(len(res.Buf)),
		Bins:               res.Bins,
		UsedCellBytes:      res.UsedBytes,
		FreeCellBytes:      res.FreeBytes,
		ExpectedBytes:      res.ExpectedBytes,
		ScannedBytes:       res.ScannedBytes,
		Dirty:              h.header.Dirty(),
		ChecksumValid:      h.header.ChecksumOK(),
		ReplayedLogs:       replayed,
		UnassociatedValues: len(h.unassociated),
	}
	tally := func(k *types.Key) bool {
		if k.Deleted() {
			s.DeletedKeys++
		} else {
			s.Keys++
		}
		for _, v := range k.Values {
			if v.Deleted {
				s.DeletedValues++
			} else {
				s.Values++
			}
		}
		return true
	}
	h.root.Walk(tally)
	for _, k := range h.forest {
		k.Walk(tally)
	}
	s.HiveType = InferType(h.header.FileName, h.root)
	return s
}
