package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math/bits"
	"strconv"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
)

const (
	// hashGridSize is the edge length of the downsampled grid the hash is built from
	hashGridSize = 8

	// DistanceIncomparable is returned when either fingerprint is absent or
	// malformed. It exceeds the maximum possible 64-bit Hamming distance, so a
	// broken fingerprint can never register as a duplicate match.
	DistanceIncomparable = 100
)

// Fingerprint computes a 64-bit average-hash fingerprint for an image,
// rendered as a 16-digit hex string. The image is shrunk to an 8x8 greyscale
// grid and each pixel contributes one bit: 1 if brighter than the grid mean.
// Returns an error for bytes that do not decode as a raster image.
func Fingerprint(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	grid := image.NewGray(image.Rect(0, 0, hashGridSize, hashGridSize))
	xdraw.ApproxBiLinear.Scale(grid, grid.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var sum int
	for _, p := range grid.Pix {
		sum += int(p)
	}
	mean := float64(sum) / float64(len(grid.Pix))

	var hash uint64
	for _, p := range grid.Pix {
		hash <<= 1
		if float64(p) > mean {
			hash |= 1
		}
	}

	return fmt.Sprintf("%016x", hash), nil
}

// Distance returns the Hamming distance between two hex fingerprints.
// Lower is more similar; Distance(x, x) == 0 and the metric is symmetric.
// Absent or malformed fingerprints yield DistanceIncomparable.
func Distance(a, b string) int {
	if a == "" || b == "" {
		return DistanceIncomparable
	}

	ha, err := strconv.ParseUint(a, 16, 64)
	if err != nil {
		return DistanceIncomparable
	}
	hb, err := strconv.ParseUint(b, 16, 64)
	if err != nil {
		return DistanceIncomparable
	}

	return bits.OnesCount64(ha ^ hb)
}
