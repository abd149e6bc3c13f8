package onnxmodel

import (
	"image"

	"golang.org/x/image/draw"
)

// ImageNet channel statistics.
var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// toTensor resizes each image to width x height and packs the batch as a
// flat NCHW float32 slice normalized with ImageNet statistics.
//
// Returns flat [len(images) * 3 * height * width] float32.
func toTensor(images []image.Image, width, height int) []float32 {
	plane := width * height
	out := make([]float32, len(images)*3*plane)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	for b, img := range images {
		draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

		off := b * 3 * plane
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				p := dst.PixOffset(x, y)
				i := y*width + x
				for c := 0; c < 3; c++ {
					v := float32(dst.Pix[p+c]) / 255
					out[off+c*plane+i] = (v - channelMean[c]) / channelStd[c]
				}
			}
		}
	}
	return out
}

// argmax returns, for each row of a flat [batchSize * numClasses] logits
// slice, the index of its largest value. Ties go to the lower index.
func argmax(logits []float32, batchSize, numClasses int) []int {
	out := make([]int, batchSize)
	for b := 0; b < batchSize; b++ {
		row := logits[b*numClasses : (b+1)*numClasses]
		best := 0
		for i, v := range row {
			if v > row[best] {
				best = i
			}
		}
		out[b] = best
	}
	return out
}
