package main

import (
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/hiverecon/pkg/api"
	"github.com/joshuapare/hiverecon/pkg/hive"
)

var (
	searchRegex      bool
	searchMaxResults int
	searchAfter      string
	searchBefore     string
)

func init() {
	cmd := newSearchCmd()
	cmd.Flags().BoolVar(&searchRegex, "regex", false, "Treat the query as a regular expression")
	cmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "Limit results (0 = unlimited)")
	cmd.Flags().StringVar(&searchAfter, "after", "", "time: keys written at or after this RFC 3339 time")
	cmd.Flags().StringVar(&searchBefore, "before", "", "time: keys written at or before this RFC 3339 time")
	rootCmd.AddCommand(cmd)
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <hive> <kind> [query]",
		Short: "Search keys and values",
		Long: `The search command runs one query over every key, including recovered
ones when --recover is set. Text matching ignores case.

Kinds:
  keys     key names
  values   value names
  data     value data, decoded as text
  slack    bytes left in data cells past the value
  size     values whose data is at least <query> bytes
  time     keys by last write time (--after, --before)
  path     key paths with * wildcards, e.g. "Software\\*\\Run"

Example:
  hivectl search SOFTWARE keys uninstall
  hivectl search SOFTWARE data "^C:\\\\Users" --regex
  hivectl search NTUSER.DAT path "Software\\Microsoft\\Windows\\CurrentVersion\\*"
  hivectl search SYSTEM time --after 2024-01-01T00:00:00Z
  hivectl search SAM size 4096 --json`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args)
		},
	}
	return cmd
}

func runSearch(args []string) error {
	kind, err := hive.ParseKind(args[1])
	if err != nil {
		return err
	}
	var query string
	if len(args) > 2 {
		query = args[2]
	}
	if query == "" && kind != hive.LastWrite {
		return fmt.Errorf("search %s needs a query", kind)
	}

	h, err := openHive(args[0])
	if err != nil {
		return err
	}
	printVerbose("Searching %s for: %s\n", kind, query)

	var hits iter.Seq[hive.Hit]
	switch kind {
	case hive.ValueSize:
		n, err := strconv.Atoi(query)
		if err != nil || n < 0 {
			return fmt.Errorf("size must be a non-negative integer, got %q", query)
		}
		hits = h.ValueSize(n)
	case hive.LastWrite:
		tr, err := parseRange(searchAfter, searchBefore)
		if err != nil {
			return err
		}
		hits = h.LastWrite(tr)
	case hive.PathMatch:
		hits = h.Expand(query)
	default:
		hits, err = h.Search(kind, query, searchRegex)
		if err != nil {
			return err
		}
	}

	results := []api.Hit{}
	for hit := range hits {
		if searchMaxResults > 0 && len(results) >= searchMaxResults {
			break
		}
		results = append(results, api.FromHit(hit))
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"hive":    args[0],
			"kind":    kind.String(),
			"query":   query,
			"results": results,
			"count":   len(results),
		})
	}
	for _, r := range results {
		switch {
		case r.Value != "":
			printInfo("%s\t%s\t%s\n", r.Path, r.Value, r.Text)
		case kind == hive.LastWrite:
			printInfo("%s\t%s\n", r.Path, r.Text)
		default:
			printInfo("%s\n", r.Path)
		}
	}
	printVerbose("\nTotal: %d matches\n", len(results))
	return nil
}

func parseRange(after, before string) (hive.TimeRange, error) {
	var tr hive.TimeRange
	for _, b := range []struct {
		flag string
		in   string
		out  *time.Time
	}{{"after", after, &tr.After}, {"before", before, &tr.Before}} {
		if b.in == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, b.in)
		if err != nil {
			return tr, fmt.Errorf("--%s: %w", b.flag, err)
		}
		*b.out = t
	}
	return tr, nil
}
