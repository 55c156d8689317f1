package dedup

import (
	"os"
	"sort"
)

// bucketBySize stats each path and partitions the records by exact byte
// size. Paths that cannot be stat'd, or that are not regular files, are
// returned as failures. Buckets with a single member cannot contain a
// duplicate and are pruned.
func bucketBySize(paths []string) (buckets map[int64][]FileRecord, failures []*Failure) {
	buckets = make(map[int64][]FileRecord)

	for ord, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			failures = append(failures, &Failure{Path: path, Ord: ord, Stage: StageSize, Err: err})
			continue
		}
		if !info.Mode().IsRegular() {
			failures = append(failures, &Failure{Path: path, Ord: ord, Stage: StageSize, Err: errNotRegular})
			continue
		}

		size := info.Size()
		buckets[size] = append(buckets[size], FileRecord{Path: path, Size: size, Ord: ord})
	}

	for size, records := range buckets {
		if len(records) < 2 {
			delete(buckets, size)
		}
	}

	return buckets, failures
}

// sortedSizes returns bucket keys ordered by the bucket's first-seen file,
// so bucket jobs are dispatched in traversal order.
func sortedSizes(buckets map[int64][]FileRecord) []int64 {
	sizes := make([]int64, 0, len(buckets))
	for size := range buckets {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool {
		return buckets[sizes[i]][0].Ord < buckets[sizes[j]][0].Ord
	})
	return sizes
}
