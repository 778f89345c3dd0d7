package types

import (
	"time"

	"github.com/google/uuid"
)

// HiveInfo exposes registry hive header (REGF) metadata.
type HiveInfo struct {
	PrimarySequence   uint32    `json:"primary_sequence"`
	SecondarySequence uint32    `json:"secondary_sequence"`
	LastWrite         time.Time `json:"last_write"`
	MajorVersion      uint32    `json:"major_version"`
	MinorVersion      uint32    `json:"minor_version"`
	Type              uint32    `json:"type"`
	Format            uint32    `json:"format"`
	RootCellOffset    uint32    `json:"root_cell_offset"`
	HiveBinsDataSize  uint32    `json:"hive_bins_data_size"`
	ClusteringFactor  uint32    `json:"clustering_factor"`
	FileName          string    `json:"file_name"`
	RmID              uuid.UUID `json:"rm_id"`
	LogID             uuid.UUID `json:"log_id"`
	TmID              uuid.UUID `json:"tm_id"`
	Flags             uint32    `json:"flags"`
	Checksum          uint32    `json:"checksum"`
	ChecksumValid     bool      `json:"checksum_valid"`
	Dirty             bool      `json:"dirty"`
}

// Stats aggregates counts over a loaded hive.
type Stats struct {
	FileSize           int64  `json:"file_size"`
	HiveType           string `json:"hive_type"`
	Keys               int    `json:"keys"`
	Values             int    `json:"values"`
	DeletedKeys        int    `json:"deleted_keys"`
	DeletedValues      int    `json:"deleted_values"`
	UnassociatedValues int    `json:"unassociated_values"`
	Bins               int    `json:"bins"`
	UsedCellBytes      int64  `json:"used_cell_bytes"`
	FreeCellBytes      int64  `json:"free_cell_bytes"`
	ExpectedBytes      int64  `json:"expected_bytes"`
	ScannedBytes       int64  `json:"scanned_bytes"`
	Dirty              bool   `json:"dirty"`
	ChecksumValid      bool   `json:"checksum_valid"`
	ReplayedLogs       int    `json:"replayed_logs"`
	Diagnostics        int    `json:"diagnostics"`
}
