package dedup

import "fmt"

// Stage identifies the pipeline stage a file was processed in
type Stage string

const (
	StageSize        Stage = "size"
	StageFingerprint Stage = "fingerprint"
	StageVerify      Stage = "verify"
)

// FileRecord represents one candidate file moving through the pipeline.
// Ord is the position in traversal order and fixes output ordering; Digest
// is the hex SHA-256, populated during fingerprinting.
type FileRecord struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Ord    int    `json:"-"`
	Digest string `json:"digest,omitempty"`
}

// DuplicateGroup is a set of two or more byte-identical files.
// Files keeps traversal order; Files[0] is the anchor the rest matched.
type DuplicateGroup struct {
	Size  int64        `json:"size"`
	Files []FileRecord `json:"files"`
}

// WastedSize returns the bytes reclaimable by keeping one copy
func (g *DuplicateGroup) WastedSize() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return int64(len(g.Files)-1) * g.Size
}

// Failure records a file that could not be processed
type Failure struct {
	Path  string `json:"path"`
	Ord   int    `json:"-"`
	Stage Stage  `json:"stage"`
	Err   error  `json:"-"`
}

// Error implements the error interface
func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s stage: %v", f.Path, f.Stage, f.Err)
}

// Reason returns the underlying error text for reports
func (f *Failure) Reason() string {
	if f.Err == nil {
		return "unknown"
	}
	return f.Err.Error()
}

// Result is the outcome of one grouping run
type Result struct {
	Groups         []DuplicateGroup `json:"groups"`
	Failures       []*Failure       `json:"failures,omitempty"`
	FilesScanned   int              `json:"files_scanned"`
	CandidateFiles int              `json:"candidate_files"` // files that survived size bucketing
	WastedSize     int64            `json:"wasted_size"`
}

// DuplicateCount returns the number of files that are redundant copies
func (r *Result) DuplicateCount() int {
	count := 0
	for _, g := range r.Groups {
		count += len(g.Files) - 1
	}
	return count
}

// ProgressUpdate is a point-in-time snapshot of a run. Processed counts
// files whose pipeline fate is decided, Total is the size of the input
// set, and Groups/WastedSize track duplicates confirmed so far.
type ProgressUpdate struct {
	Stage      Stage
	Path       string
	Processed  int
	Total      int
	Groups     int
	WastedSize int64
}

// ProgressFunc receives progress snapshots during a run
type ProgressFunc func(u ProgressUpdate)
