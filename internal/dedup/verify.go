package dedup

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
)

// compareChunkSize is the read buffer used for byte comparison (64KB)
const compareChunkSize = 64 * 1024

var errNotRegular = errors.New("not a regular file")

// verifyBucket partitions a candidate bucket (same size, same digest if
// fingerprinting ran) into confirmed duplicate groups by byte comparison.
//
// The first unassigned file becomes a group anchor and every remaining
// unassigned file is compared against it; matches join the group. A read
// error drops only the failing file. Groups keep input order, so output
// is stable across runs.
func verifyBucket(ctx context.Context, records []FileRecord) (groups []DuplicateGroup, failures []*Failure) {
	assigned := make([]bool, len(records))

	for i := range records {
		if assigned[i] {
			continue
		}
		if ctx.Err() != nil {
			return groups, failures
		}

		anchor := records[i]
		group := DuplicateGroup{Size: anchor.Size, Files: []FileRecord{anchor}}
		var memberIdx []int
		anchorFailed := false

		for j := i + 1; j < len(records); j++ {
			if assigned[j] {
				continue
			}
			if ctx.Err() != nil {
				return groups, failures
			}

			equal, err := equalContents(ctx, anchor.Path, records[j].Path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					// Cancellation is not a file failure.
					return groups, failures
				}
				if failedPath(err) == anchor.Path {
					failures = append(failures, &Failure{
						Path:  anchor.Path,
						Ord:   anchor.Ord,
						Stage: StageVerify,
						Err:   err,
					})
					anchorFailed = true
					break
				}
				failures = append(failures, &Failure{
					Path:  records[j].Path,
					Ord:   records[j].Ord,
					Stage: StageVerify,
					Err:   err,
				})
				assigned[j] = true // excluded, never a candidate again
				continue
			}
			if equal {
				group.Files = append(group.Files, records[j])
				memberIdx = append(memberIdx, j)
				assigned[j] = true
			}
		}

		assigned[i] = true
		if anchorFailed {
			// Files already matched against a now-unreadable anchor get
			// another chance with a later anchor.
			for _, j := range memberIdx {
				assigned[j] = false
			}
			continue
		}
		if len(group.Files) >= 2 {
			groups = append(groups, group)
		}
	}

	return groups, failures
}

// failedPath extracts the file a filesystem error refers to, so a failing
// anchor is not blamed on the file it was being compared against
func failedPath(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Path
	}
	return ""
}

// equalContents compares two files chunk by chunk, returning on the first
// differing chunk. Callers guarantee equal sizes, but a short read at EOF
// on either side is still treated as a mismatch rather than an error.
func equalContents(ctx context.Context, pathA, pathB string) (bool, error) {
	fileA, err := os.Open(pathA)
	if err != nil {
		return false, err
	}
	defer fileA.Close()

	fileB, err := os.Open(pathB)
	if err != nil {
		return false, err
	}
	defer fileB.Close()

	bufA := make([]byte, compareChunkSize)
	bufB := make([]byte, compareChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		nA, errA := io.ReadFull(fileA, bufA)
		nB, errB := io.ReadFull(fileB, bufB)

		// A short read from EOF means the file ended; any other error is a
		// real read failure and must surface before the length comparison,
		// or an I/O error would masquerade as a plain mismatch.
		aDone := errA == io.EOF || errA == io.ErrUnexpectedEOF
		bDone := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !aDone {
			return false, errA
		}
		if errB != nil && !bDone {
			return false, errB
		}

		if nA != nB {
			return false, nil
		}
		if !bytes.Equal(bufA[:nA], bufB[:nB]) {
			return false, nil
		}

		switch {
		case aDone && bDone:
			return true, nil
		case aDone != bDone:
			return false, nil
		}
	}
}
