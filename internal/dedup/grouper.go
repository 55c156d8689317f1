package dedup

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
)

// Grouper runs the duplicate detection pipeline over a resolved file list.
// Size buckets are independent, so they are processed by a worker pool;
// the final group list is reassembled in traversal order regardless of
// scheduling.
type Grouper struct {
	// SkipFingerprint bypasses the hashing stage: every same-size file is
	// byte-compared against every other. Trades CPU for I/O on small sets
	// or slow storage. Never changes the resulting groups.
	SkipFingerprint bool

	// Workers caps concurrent bucket processing. Zero means NumCPU,
	// clamped to 4..16.
	Workers int

	// Progress, when set, receives per-file updates. Called from worker
	// goroutines; implementations must be safe for concurrent use.
	Progress ProgressFunc
}

// bucketOutcome carries one worker's output back to the collector
type bucketOutcome struct {
	groups   []DuplicateGroup
	failures []*Failure
}

// runCounters is the shared state behind progress snapshots. Workers
// bump the counters as files are decided and groups confirmed.
type runCounters struct {
	processed atomic.Int64
	groups    atomic.Int64
	wasted    atomic.Int64
	total     int
}

// Run groups the given paths into sets of byte-identical files. Paths are
// treated as one flat pool no matter how many directories they came from.
//
// Per-file errors never abort the run; they are collected in
// Result.Failures and the file is treated as unique. Cancelling ctx stops
// new work and returns the groups confirmed so far together with ctx.Err().
func (g *Grouper) Run(ctx context.Context, paths []string) (*Result, error) {
	result := &Result{FilesScanned: len(paths)}
	total := len(paths)

	buckets, statFailures := bucketBySize(paths)
	result.Failures = append(result.Failures, statFailures...)

	sizes := sortedSizes(buckets)
	for _, size := range sizes {
		result.CandidateFiles += len(buckets[size])
	}

	// Files pruned by size bucketing are already decided.
	counters := &runCounters{total: total}
	counters.processed.Store(int64(total - result.CandidateFiles))
	g.report(StageSize, "", counters)

	jobs := make(chan []FileRecord)
	outcomes := make(chan bucketOutcome)

	var wg sync.WaitGroup
	for i := 0; i < g.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for bucket := range jobs {
				outcomes <- g.processBucket(ctx, bucket, counters)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, size := range sizes {
			select {
			case jobs <- buckets[size]:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		result.Groups = append(result.Groups, outcome.groups...)
		result.Failures = append(result.Failures, outcome.failures...)
	}

	// Workers finish in arbitrary order; restore traversal order.
	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].Files[0].Ord < result.Groups[j].Files[0].Ord
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Ord < result.Failures[j].Ord
	})

	for _, group := range result.Groups {
		result.WastedSize += group.WastedSize()
	}

	return result, ctx.Err()
}

// processBucket runs stages 2 and 3 over a single size bucket
func (g *Grouper) processBucket(ctx context.Context, bucket []FileRecord, counters *runCounters) bucketOutcome {
	var outcome bucketOutcome

	subBuckets := [][]FileRecord{bucket}
	if !g.SkipFingerprint {
		var failures []*Failure
		subBuckets, failures = splitByDigest(ctx, bucket)
		outcome.failures = append(outcome.failures, failures...)

		// Hashed files whose digest turned out unique are decided here.
		survivors := 0
		for _, sub := range subBuckets {
			survivors += len(sub)
		}
		counters.processed.Add(int64(len(bucket) - survivors))
		g.report(StageFingerprint, bucket[0].Path, counters)
	}

	for _, sub := range subBuckets {
		groups, failures := verifyBucket(ctx, sub)
		outcome.groups = append(outcome.groups, groups...)
		outcome.failures = append(outcome.failures, failures...)

		for _, group := range groups {
			counters.groups.Add(1)
			counters.wasted.Add(group.WastedSize())
		}
		counters.processed.Add(int64(len(sub)))
		g.report(StageVerify, sub[len(sub)-1].Path, counters)
	}

	return outcome
}

func (g *Grouper) workerCount() int {
	if g.Workers > 0 {
		return g.Workers
	}
	workers := runtime.NumCPU()
	if workers < 4 {
		workers = 4
	}
	if workers > 16 {
		workers = 16
	}
	return workers
}

func (g *Grouper) report(stage Stage, path string, counters *runCounters) {
	if g.Progress != nil {
		g.Progress(ProgressUpdate{
			Stage:      stage,
			Path:       path,
			Processed:  int(counters.processed.Load()),
			Total:      counters.total,
			Groups:     int(counters.groups.Load()),
			WastedSize: counters.wasted.Load(),
		})
	}
}
