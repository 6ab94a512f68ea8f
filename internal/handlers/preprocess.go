package handlers

import (
	"image"

	"github.com/nfnt/resize"

	"github.com/Brownie44l1/cifar-api/internal/model"
)

// Preprocess resizes img to the model's input size and flattens it to
// channel-major float32 values in [0, 1].
func Preprocess(img image.Image) []float32 {
	size := uint(model.ImageSize)
	resized := resize.Resize(size, size, img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height

	inputData := make([]float32, model.Channels*plane)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			i := y*width + x
			inputData[i] = float32(r) / 65535.0
			inputData[plane+i] = float32(g) / 65535.0
			inputData[2*plane+i] = float32(b) / 65535.0
		}
	}

	return inputData
}
