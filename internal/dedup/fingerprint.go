package dedup

import (
	"context"

	"github.com/fenilsonani/dupescan/pkg/utils"
)

// splitByDigest hashes every member of a size bucket and splits it into
// sub-buckets keyed by digest. Member order within a sub-bucket follows
// the input order. Files that fail to hash are excluded and reported;
// equal digests still require byte verification downstream.
func splitByDigest(ctx context.Context, records []FileRecord) (subBuckets [][]FileRecord, failures []*Failure) {
	byDigest := make(map[string][]FileRecord)
	var order []string // first-seen digest order keeps output deterministic

	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, failures
		}

		rec := records[i]
		digest, err := utils.HashFile(rec.Path)
		if err != nil {
			failures = append(failures, &Failure{Path: rec.Path, Ord: rec.Ord, Stage: StageFingerprint, Err: err})
			continue
		}
		rec.Digest = digest

		if _, seen := byDigest[digest]; !seen {
			order = append(order, digest)
		}
		byDigest[digest] = append(byDigest[digest], rec)
	}

	for _, digest := range order {
		if sub := byDigest[digest]; len(sub) >= 2 {
			subBuckets = append(subBuckets, sub)
		}
	}

	return subBuckets, failures
}
