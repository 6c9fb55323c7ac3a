// File: workload/canny.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package workload

import (
	"image"
	"image/color"
	"math"

	"github.com/momentics/schedbench/api"
	"github.com/momentics/schedbench/pool"
)

var (
	planes = pool.NewSlicePool[float64]()
	labels = pool.NewSlicePool[uint8]()
	stacks = pool.NewSlicePool[int]()
)

// DefaultCannySize is the side of the synthetic frame processed per pass.
const DefaultCannySize = 512

// Canny returns an image-processing workload: it renders a synthetic frame and runs
// gaussian blur, sobel gradients, non-maximum suppression and hysteresis thresholding
// over it, passes times.
func Canny(size, passes int) api.Workload {
	if size <= 0 {
		size = DefaultCannySize
	}
	if passes <= 0 {
		passes = 1
	}
	src := syntheticFrame(size)
	return func() {
		for i := 0; i < passes; i++ {
			DetectEdges(src, 20, 60)
		}
	}
}

// syntheticFrame draws concentric rings over a diagonal gradient so every stage
// has real edges to find.
func syntheticFrame(size int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)-c, float64(y)-c)
			v := uint8((x + y) * 127 / (2 * size))
			if int(d/16)%2 == 0 {
				v += 128
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

var gauss5 = [5][5]float64{
	{2, 4, 5, 4, 2},
	{4, 9, 12, 9, 4},
	{5, 12, 15, 12, 5},
	{4, 9, 12, 9, 4},
	{2, 4, 5, 4, 2},
}

// DetectEdges runs the Canny edge detector on src with the given hysteresis thresholds
// and returns a binary edge map (255 = edge).
func DetectEdges(src *image.Gray, low, high float64) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	blur := planes.Get(w*h, false)
	defer planes.Put(blur)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					acc += gauss5[ky+2][kx+2] * float64(src.GrayAt(b.Min.X+clamp(x+kx, w), b.Min.Y+clamp(y+ky, h)).Y)
				}
			}
			blur[y*w+x] = acc / 159
		}
	}

	mag := planes.Get(w*h, false)
	defer planes.Put(mag)
	dir := labels.Get(w*h, false)
	defer labels.Put(dir)
	at := func(x, y int) float64 { return blur[clamp(y, h)*w+clamp(x, w)] }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			mag[y*w+x] = math.Hypot(gx, gy)
			dir[y*w+x] = quantize(math.Atan2(gy, gx))
		}
	}

	// non-maximum suppression, then classify: 2 strong, 1 weak
	class := labels.Get(w*h, true)
	defer labels.Put(class)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			var a, c float64
			switch dir[i] {
			case 0:
				a, c = mag[i-1], mag[i+1]
			case 1:
				a, c = mag[i-w+1], mag[i+w-1]
			case 2:
				a, c = mag[i-w], mag[i+w]
			default:
				a, c = mag[i-w-1], mag[i+w+1]
			}
			m := mag[i]
			if m < a || m < c {
				continue
			}
			switch {
			case m >= high:
				class[i] = 2
			case m >= low:
				class[i] = 1
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	stack := stacks.Get(1024, false)[:0]
	defer func() { stacks.Put(stack) }()
	for i, v := range class {
		if v == 2 {
			stack = append(stack, i)
			out.Pix[i] = 255
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if class[j] == 1 && out.Pix[j] == 0 {
					out.Pix[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// quantize maps a gradient angle to one of four directions:
// 0 horizontal, 1 45°, 2 vertical, 3 135°.
func quantize(theta float64) uint8 {
	deg := theta * 180 / math.Pi
	if deg < 0 {
		deg += 180
	}
	switch {
	case deg < 22.5 || deg >= 157.5:
		return 0
	case deg < 67.5:
		return 1
	case deg < 112.5:
		return 2
	default:
		return 3
	}
}
