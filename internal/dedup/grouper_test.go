package dedup

import (
	"context"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/fenilsonani/dupescan/internal/testutil"
)

func groupPaths(result *Result) [][]string {
	var groups [][]string
	for _, g := range result.Groups {
		var paths []string
		for _, file := range g.Files {
			paths = append(paths, file.Path)
		}
		groups = append(groups, paths)
	}
	return groups
}

func TestRunThreeFilesTwoIdentical(t *testing.T) {
	f := testutil.NewFixture(t)

	content := make([]byte, 100)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	other := append(append([]byte{}, content...)[:99], '!')

	a := f.CreateFile("a.bin", content)
	b := f.CreateFile("b.bin", content)
	c := f.CreateFile("c.bin", other)

	grouper := &Grouper{Workers: 2}
	result, err := grouper.Run(context.Background(), []string{a, b, c})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(result.Groups))
	}
	want := []string{a, b}
	if !reflect.DeepEqual(groupPaths(result)[0], want) {
		t.Errorf("group = %v, want %v", groupPaths(result)[0], want)
	}
	if result.WastedSize != 100 {
		t.Errorf("WastedSize = %d, want 100", result.WastedSize)
	}
	if result.DuplicateCount() != 1 {
		t.Errorf("DuplicateCount = %d, want 1", result.DuplicateCount())
	}
}

func TestRunDifferentSizesNoGroups(t *testing.T) {
	f := testutil.NewFixture(t)

	a := f.CreateFileWithSize("a.bin", 50, 'x')
	b := f.CreateFileWithSize("b.bin", 51, 'x')

	grouper := &Grouper{}
	result, err := grouper.Run(context.Background(), []string{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Groups) != 0 {
		t.Errorf("expected no groups, got %v", groupPaths(result))
	}
	if result.CandidateFiles != 0 {
		t.Errorf("CandidateFiles = %d, want 0", result.CandidateFiles)
	}
}

func TestRunOneByteDifference(t *testing.T) {
	f := testutil.NewFixture(t)

	base := make([]byte, 4096)
	variant := append([]byte{}, base...)
	variant[4095] = 1

	a := f.CreateFile("a.bin", base)
	b := f.CreateFile("b.bin", variant)

	for _, skip := range []bool{false, true} {
		grouper := &Grouper{SkipFingerprint: skip}
		result, err := grouper.Run(context.Background(), []string{a, b})
		if err != nil {
			t.Fatalf("skip=%v: unexpected error: %v", skip, err)
		}
		if len(result.Groups) != 0 {
			t.Errorf("skip=%v: expected no groups, got %v", skip, groupPaths(result))
		}
	}
}

func TestRunUnreadableFileIsReported(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}

	f := testutil.NewFixture(t)

	a := f.CreateFileWithSize("a.bin", 200, 'q')
	b := f.CreateFileWithSize("b.bin", 200, 'q')
	blocked := f.CreateFileWithSize("blocked.bin", 200, 'q')
	f.Chmod(blocked, 0000) // size query succeeds, reads fail

	grouper := &Grouper{}
	result, err := grouper.Run(context.Background(), []string{a, blocked, b})
	if err != nil {
		t.Fatalf("per-file failures must not abort the run: %v", err)
	}

	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failures))
	}
	if result.Failures[0].Path != blocked {
		t.Errorf("failure path = %q, want %q", result.Failures[0].Path, blocked)
	}

	if len(result.Groups) != 1 {
		t.Fatalf("scan should complete for readable files, groups = %v", groupPaths(result))
	}
	for _, file := range result.Groups[0].Files {
		if file.Path == blocked {
			t.Error("unreadable file must not appear in any group")
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	f := testutil.NewFixture(t)

	var paths []string
	for _, tc := range []struct {
		name string
		fill byte
		size int
	}{
		{"d1/a.bin", 'a', 300},
		{"d1/b.bin", 'b', 300},
		{"d1/c.bin", 'a', 300},
		{"d2/d.bin", 'b', 300},
		{"d2/e.bin", 'c', 128},
		{"d2/f.bin", 'c', 128},
		{"d2/g.bin", 'd', 64},
	} {
		paths = append(paths, f.CreateFileWithSize(tc.name, tc.size, tc.fill))
	}

	grouper := &Grouper{Workers: 8}
	first, err := grouper.Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		again, err := grouper.Run(context.Background(), paths)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		if !reflect.DeepEqual(groupPaths(first), groupPaths(again)) {
			t.Fatalf("run %d differs:\nfirst: %v\nagain: %v", i, groupPaths(first), groupPaths(again))
		}
	}
}

func TestRunFingerprintIsPureOptimization(t *testing.T) {
	f := testutil.NewFixture(t)

	var paths []string
	for _, tc := range []struct {
		name string
		fill byte
		size int
	}{
		{"a.bin", 'a', 500},
		{"b.bin", 'a', 500},
		{"c.bin", 'b', 500},
		{"d.bin", 'b', 500},
		{"e.bin", 'c', 500},
	} {
		paths = append(paths, f.CreateFileWithSize(tc.name, tc.size, tc.fill))
	}

	hashed, err := (&Grouper{SkipFingerprint: false}).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	direct, err := (&Grouper{SkipFingerprint: true}).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(groupPaths(hashed), groupPaths(direct)) {
		t.Errorf("fingerprinting changed the result:\nhashed: %v\ndirect: %v",
			groupPaths(hashed), groupPaths(direct))
	}
}

func TestRunPartitionProperty(t *testing.T) {
	f := testutil.NewFixture(t)

	var paths []string
	for _, tc := range []struct {
		name string
		fill byte
	}{
		{"a", 'x'}, {"b", 'x'}, {"c", 'y'}, {"d", 'y'}, {"e", 'x'},
	} {
		paths = append(paths, f.CreateFileWithSize(tc.name, 64, tc.fill))
	}

	result, err := (&Grouper{}).Run(context.Background(), paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]int)
	for gi, group := range result.Groups {
		for _, file := range group.Files {
			if prev, dup := seen[file.Path]; dup {
				t.Errorf("%s appears in groups %d and %d", file.Path, prev, gi)
			}
			seen[file.Path] = gi
			if file.Size != group.Size {
				t.Errorf("%s size %d != group size %d", file.Path, file.Size, group.Size)
			}
		}
	}
}

func TestRunCancelledReturnsPartialResult(t *testing.T) {
	f := testutil.NewFixture(t)

	var paths []string
	for i := 0; i < 20; i++ {
		paths = append(paths, f.CreateFileWithSize(string(rune('a'+i))+".bin", 256, byte(i%3)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := (&Grouper{}).Run(ctx, paths)
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("cancelled run must still return a result")
	}
}

func TestRunProgressCallback(t *testing.T) {
	f := testutil.NewFixture(t)

	a := f.CreateFileWithSize("a.bin", 100, 'x')
	b := f.CreateFileWithSize("b.bin", 100, 'x')
	c := f.CreateFileWithSize("c.bin", 33, 'x')

	var mu sync.Mutex
	var stages []Stage
	var last ProgressUpdate

	grouper := &Grouper{
		Progress: func(u ProgressUpdate) {
			mu.Lock()
			defer mu.Unlock()
			stages = append(stages, u.Stage)
			if u.Total != 3 {
				t.Errorf("total = %d, want 3", u.Total)
			}
			if u.Processed >= last.Processed {
				last = u
			}
		},
	}

	if _, err := grouper.Run(context.Background(), []string{a, b, c}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(stages) == 0 {
		t.Fatal("progress callback never invoked")
	}
	if stages[0] != StageSize {
		t.Errorf("first stage = %q, want %q", stages[0], StageSize)
	}
	if last.Processed != 3 {
		t.Errorf("final processed = %d, want 3", last.Processed)
	}
	// The duplicate pair must show up in the running totals, not just
	// in the final result.
	if last.Groups != 1 {
		t.Errorf("final groups = %d, want 1", last.Groups)
	}
	if last.WastedSize != 100 {
		t.Errorf("final wasted = %d, want 100", last.WastedSize)
	}
}

func TestRunEmptyInput(t *testing.T) {
	result, err := (&Grouper{}).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Groups) != 0 || len(result.Failures) != 0 {
		t.Errorf("empty input should yield empty result, got %+v", result)
	}
}
