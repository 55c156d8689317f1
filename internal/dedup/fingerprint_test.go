package dedup

import (
	"context"
	"os"
	"testing"

	"github.com/fenilsonani/dupescan/internal/testutil"
)

func TestSplitByDigest(t *testing.T) {
	f := testutil.NewFixture(t)

	// Same size, two distinct contents.
	a := f.CreateFile("a.bin", []byte("XXXXXXXXXX"))
	b := f.CreateFile("b.bin", []byte("YYYYYYYYYY"))
	c := f.CreateFile("c.bin", []byte("XXXXXXXXXX"))

	records := []FileRecord{
		{Path: a, Size: 10, Ord: 0},
		{Path: b, Size: 10, Ord: 1},
		{Path: c, Size: 10, Ord: 2},
	}

	subBuckets, failures := splitByDigest(context.Background(), records)

	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %v", failures)
	}
	// b's digest is unique, so only the a/c sub-bucket survives.
	if len(subBuckets) != 1 {
		t.Fatalf("expected 1 sub-bucket, got %d", len(subBuckets))
	}
	sub := subBuckets[0]
	if len(sub) != 2 || sub[0].Path != a || sub[1].Path != c {
		t.Errorf("sub-bucket = %v, want [a c]", sub)
	}
	if sub[0].Digest == "" || sub[0].Digest != sub[1].Digest {
		t.Errorf("digests not populated consistently: %q vs %q", sub[0].Digest, sub[1].Digest)
	}
}

func TestSplitByDigestReadError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks are bypassed for root")
	}

	f := testutil.NewFixture(t)

	a := f.CreateFile("a.bin", []byte("XXXXXXXXXX"))
	b := f.CreateFile("b.bin", []byte("XXXXXXXXXX"))
	blocked := f.CreateFile("blocked.bin", []byte("XXXXXXXXXX"))
	f.Chmod(blocked, 0000)

	records := []FileRecord{
		{Path: a, Size: 10, Ord: 0},
		{Path: blocked, Size: 10, Ord: 1},
		{Path: b, Size: 10, Ord: 2},
	}

	subBuckets, failures := splitByDigest(context.Background(), records)

	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Stage != StageFingerprint {
		t.Errorf("failure stage = %q, want %q", failures[0].Stage, StageFingerprint)
	}
	if len(subBuckets) != 1 || len(subBuckets[0]) != 2 {
		t.Fatalf("readable files should still form a sub-bucket: %v", subBuckets)
	}
}

func TestSplitByDigestCancelled(t *testing.T) {
	f := testutil.NewFixture(t)

	a := f.CreateFile("a.bin", []byte("XXXXXXXXXX"))
	b := f.CreateFile("b.bin", []byte("XXXXXXXXXX"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	subBuckets, _ := splitByDigest(ctx, []FileRecord{
		{Path: a, Size: 10, Ord: 0},
		{Path: b, Size: 10, Ord: 1},
	})

	if len(subBuckets) != 0 {
		t.Errorf("cancelled split should produce no sub-buckets, got %v", subBuckets)
	}
}
