/*
Package hive loads Windows registry hives from disk or memory and answers
read-only queries over the reconstructed key tree.

# Quick Start

Load a hive and read a value:

	h, err := hive.Load(ctx, "SOFTWARE", types.LoadOptions{})
	if err != nil {
	    log.Fatal(err)
	}
	k, err := h.Key(`Microsoft\Windows NT\CurrentVersion`)
	if err != nil {
	    log.Fatal(err)
	}
	name, _ := k.Value("ProductName").String()

# Loading

A load runs in phases: base block decode, transaction log replay when the
hive is dirty and logs are available, page scan, tree build, optional
deleted-record recovery and search indexing. Each long phase reports
progress through LoadOptions.Progress and honours context cancellation. A
cancelled or failed load returns no hive.

Replay a dirty hive with the logs next to it:

	h, err := hive.Load(ctx, "NTUSER.DAT", types.LoadOptions{ReplayLogs: true})

Salvage deleted keys and values:

	h, err := hive.Load(ctx, "SYSTEM", types.LoadOptions{Recover: true})
	for _, k := range h.Deleted() {
	    fmt.Println(k.Path())
	}

# Searching

Every query returns an iter.Seq that can be ranged over lazily:

	for hit := range h.ValueData(hive.Substring("powershell")) {
	    fmt.Println(hit.Key.Path(), hit.Value.Name)
	}
	for hit := range h.Expand(`Microsoft\Windows\CurrentVersion\*`) {
	    fmt.Println(hit.Key.Path())
	}

# Diagnostics

Damaged records never fail a load. Each skipped record, count mismatch or
checksum problem becomes a types.Diagnostic in the report returned by
Diagnostics, and is logged through LoadOptions.Logger.

# Concurrency

A *Hive is immutable once Load returns and may be queried from any number
of goroutines. Session holds the current hive of a long-running process and
swaps it atomically when a new one is loaded.
*/
package hive
