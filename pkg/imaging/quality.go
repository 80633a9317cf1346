package imaging

import (
	"bytes"
	"image"
	"image/color"
)

const (
	// NeutralQualityScore is used when an image cannot be decoded. Quality is
	// advisory, so an unreadable payload degrades to the midpoint rather than
	// failing the upload.
	NeutralQualityScore = 50

	minSharpDimension = 500
	maxResolutionPts  = 50
	maxSharpnessPts   = 50
)

// QualityScore rates an image 0-100 from resolution and sharpness, 50 points
// each. Resolution scales linearly with the shorter edge above 500px; sharpness
// is the variance of an edge-detection pass, scaled down. Never returns an
// error: undecodable bytes score NeutralQualityScore.
func QualityScore(data []byte) int {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return NeutralQualityScore
	}
	return resolutionPoints(img) + sharpnessPoints(img)
}

func resolutionPoints(img image.Image) int {
	b := img.Bounds()
	minDim := b.Dx()
	if b.Dy() < minDim {
		minDim = b.Dy()
	}

	pts := (minDim - minSharpDimension) / 30
	if pts < 0 {
		return 0
	}
	if pts > maxResolutionPts {
		return maxResolutionPts
	}
	return pts
}

// sharpnessPoints runs a 3x3 edge-detection kernel over the greyscale image
// and scores the variance of the result. Flat or blurry images produce weak
// edges and a low variance; crisp document scans produce a high one.
func sharpnessPoints(img image.Image) int {
	grey := toGray(img)
	edges := detectEdges(grey)

	pts := int(variance(edges) / 10)
	if pts > maxSharpnessPts {
		return maxSharpnessPts
	}
	return pts
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	grey := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			grey.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return grey
}

// detectEdges applies the kernel
//
//	-1 -1 -1
//	-1  8 -1
//	-1 -1 -1
//
// with each output clamped to [0, 255]. Border pixels are left at zero.
func detectEdges(grey *image.Gray) []uint8 {
	w, h := grey.Rect.Dx(), grey.Rect.Dy()
	out := make([]uint8, w*h)
	if w < 3 || h < 3 {
		return out
	}

	at := func(x, y int) int { return int(grey.Pix[y*grey.Stride+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			v := 8*at(x, y) -
				at(x-1, y-1) - at(x, y-1) - at(x+1, y-1) -
				at(x-1, y) - at(x+1, y) -
				at(x-1, y+1) - at(x, y+1) - at(x+1, y+1)
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out[y*w+x] = uint8(v)
		}
	}
	return out
}

func variance(pixels []uint8) float64 {
	if len(pixels) == 0 {
		return 0
	}

	var sum float64
	for _, p := range pixels {
		sum += float64(p)
	}
	mean := sum / float64(len(pixels))

	var sq float64
	for _, p := range pixels {
		d := float64(p) - mean
		sq += d * d
	}
	return sq / float64(len(pixels))
}
