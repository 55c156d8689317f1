// Package remover deletes confirmed duplicates, keeping the first file of
// every group. It is the consumer side of the pipeline: the grouper never
// touches the filesystem beyond reads.
package remover

import (
	"os"

	"github.com/fenilsonani/dupescan/internal/dedup"
)

// Remover deletes redundant copies from duplicate groups
type Remover struct {
	dryRun bool
}

// RemoveResult summarizes a removal pass
type RemoveResult struct {
	DeletedFiles []string
	DeletedSize  int64
	KeptFiles    []string
	Failed       []*DeletionError
}

// New creates a Remover. With dryRun set, Remove counts what would be
// deleted without touching the filesystem.
func New(dryRun bool) *Remover {
	return &Remover{dryRun: dryRun}
}

// Remove applies the keep-first policy to every group: Files[0] is kept,
// the rest are deleted. Failures are categorized and never abort the pass.
func (r *Remover) Remove(result *dedup.Result) *RemoveResult {
	removeResult := &RemoveResult{}

	for _, group := range result.Groups {
		removeResult.KeptFiles = append(removeResult.KeptFiles, group.Files[0].Path)

		for _, file := range group.Files[1:] {
			if r.dryRun {
				removeResult.DeletedFiles = append(removeResult.DeletedFiles, file.Path)
				removeResult.DeletedSize += file.Size
				continue
			}

			if err := os.Remove(file.Path); err != nil {
				removeResult.Failed = append(removeResult.Failed, CategorizeError(file.Path, err))
				continue
			}

			removeResult.DeletedFiles = append(removeResult.DeletedFiles, file.Path)
			removeResult.DeletedSize += file.Size
		}
	}

	return removeResult
}
