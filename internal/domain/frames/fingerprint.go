// Package frames samples video frames and suppresses near-duplicates via a
// perceptual fingerprint, so the vision model is only invoked on novel frames.
package frames

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math/bits"
	"os"

	"github.com/nfnt/resize"
)

// Fingerprint computes a 64-bit difference hash of the image at path:
// downscale to 9x8 grayscale and emit one bit per horizontal luminance
// gradient. Robust to re-encoding and minor pixel noise.
func Fingerprint(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return hashImage(img), nil
}

func hashImage(img image.Image) uint64 {
	const (
		hashW = 9
		hashH = 8
	)
	small := resize.Resize(hashW, hashH, img, resize.Bilinear)

	var gray [hashH][hashW]float64
	b := small.Bounds()
	for y := 0; y < hashH; y++ {
		for x := 0; x < hashW; x++ {
			r, g, bl, _ := small.At(b.Min.X+x, b.Min.Y+y).RGBA()
			gray[y][x] = 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)
		}
	}

	var h uint64
	for y := 0; y < hashH; y++ {
		for x := 0; x < hashW-1; x++ {
			h <<= 1
			if gray[y][x] > gray[y][x+1] {
				h |= 1
			}
		}
	}
	return h
}

// Distance is the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
