package frames

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func sample(ts float64, fp uint64) Sample {
	return Sample{Timestamp: ts, Fingerprint: fp, FingerprintOK: true}
}

func TestDedup_GreedyChain(t *testing.T) {
	// Second frame is within threshold of the first, third is within
	// threshold of the second but compared against the first (the
	// reference), so it must be analyzed.
	// 0x00FF is 8 bits from the first frame (duplicate), 0x00FF00FF is 16
	// bits from it (novel, becomes the reference), and the last frame is
	// identical to that new reference.
	samples := []Sample{
		sample(0, 0x0000),
		sample(10, 0x00FF),
		sample(20, 0x00FF00FF),
		sample(30, 0x00FF00FF),
	}
	decisions, stats := Dedup(samples, 12)

	want := []bool{false, true, false, true}
	for i, d := range decisions {
		if d.Duplicate != want[i] {
			t.Fatalf("frame %d: duplicate=%v, want %v", i, d.Duplicate, want[i])
		}
	}
	if decisions[1].RefTimestamp != 0 {
		t.Fatalf("frame 1 should reference t=0, got %v", decisions[1].RefTimestamp)
	}
	if decisions[3].RefTimestamp != 20 {
		t.Fatalf("frame 3 should reference t=20, got %v", decisions[3].RefTimestamp)
	}
	if stats.TotalFrames != 4 || stats.AnalyzedFrames != 2 || stats.SkippedFrames != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.SkipRatio() != 0.5 {
		t.Fatalf("unexpected skip ratio: %v", stats.SkipRatio())
	}
}

func TestDedup_FingerprintFailureForcesAnalysis(t *testing.T) {
	samples := []Sample{
		sample(0, 0x0),
		{Timestamp: 10}, // fingerprint failed
		sample(20, 0x0),
	}
	decisions, stats := Dedup(samples, 12)
	if decisions[1].Duplicate {
		t.Fatal("frame without fingerprint must be analyzed")
	}
	// The failed frame becomes the reference, so the identical third frame
	// cannot be compared against it either.
	if decisions[2].Duplicate {
		t.Fatal("frame after a fingerprint failure must be analyzed")
	}
	if stats.AnalyzedFrames != 3 {
		t.Fatalf("expected all frames analyzed, got %+v", stats)
	}
}

func TestDedup_Deterministic(t *testing.T) {
	samples := []Sample{sample(0, 0x1), sample(10, 0x1), sample(20, 0x1)}
	first, _ := Dedup(samples, 12)
	second, _ := Dedup(samples, 12)
	for i := range first {
		if first[i].Duplicate != second[i].Duplicate {
			t.Fatalf("dedup not deterministic at frame %d", i)
		}
	}
}

func TestFingerprint_SimilarAndDistinctImages(t *testing.T) {
	dir := t.TempDir()

	gradient := writePNG(t, filepath.Join(dir, "a.png"), func(x, y int) color.Gray {
		return color.Gray{Y: uint8(x * 4)}
	})
	gradientNoisy := writePNG(t, filepath.Join(dir, "b.png"), func(x, y int) color.Gray {
		v := x * 4
		if (x+y)%17 == 0 {
			v += 2
		}
		return color.Gray{Y: uint8(v)}
	})
	inverse := writePNG(t, filepath.Join(dir, "c.png"), func(x, y int) color.Gray {
		return color.Gray{Y: uint8(255 - x*4)}
	})

	fa, err := Fingerprint(gradient)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := Fingerprint(gradientNoisy)
	if err != nil {
		t.Fatal(err)
	}
	fc, err := Fingerprint(inverse)
	if err != nil {
		t.Fatal(err)
	}

	if d := Distance(fa, fb); d > 12 {
		t.Fatalf("near-identical images too far apart: %d", d)
	}
	if d := Distance(fa, fc); d <= 12 {
		t.Fatalf("opposite gradients too close: %d", d)
	}
}

func TestFingerprint_MissingFile(t *testing.T) {
	if _, err := Fingerprint(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func writePNG(t *testing.T, path string, px func(x, y int) color.Gray) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, px(x, y))
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}
