package render

import "math"

// Frame is one rendered image, RGBA interleaved in row-major order, channel
// values nominally in [0,1]. Intermediate results may exceed the range; a
// frame is clamped once when its chain finishes.
type Frame struct {
	Pix  []float32
	W, H int
}

func NewFrame(w, h int) *Frame {
	return &Frame{Pix: make([]float32, w*h*4), W: w, H: h}
}

func (f *Frame) Clone() *Frame {
	ret := NewFrame(f.W, f.H)
	copy(ret.Pix, f.Pix)
	return ret
}

// Fill sets every pixel to one color.
func (f *Frame) Fill(r, g, b, a float32) {
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i] = r
		f.Pix[i+1] = g
		f.Pix[i+2] = b
		f.Pix[i+3] = a
	}
}

func (f *Frame) at(x, y int) (r, g, b, a float32) {
	x, y = mod(x, f.W), mod(y, f.H)
	i := (y*f.W + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}

func (f *Frame) set(x, y int, r, g, b, a float32) {
	i := (y*f.W + x) * 4
	f.Pix[i] = r
	f.Pix[i+1] = g
	f.Pix[i+2] = b
	f.Pix[i+3] = a
}

// Sample reads the frame at normalized coordinates with bilinear filtering.
// Coordinates wrap, so every transform that pushes sampling outside the unit
// square tiles instead of clamping to an edge.
func (f *Frame) Sample(u, v float32) (r, g, b, a float32) {
	fx := float64(u)*float64(f.W) - 0.5
	fy := float64(v)*float64(f.H) - 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := float32(fx-math.Floor(fx)), float32(fy-math.Floor(fy))
	r00, g00, b00, a00 := f.at(x0, y0)
	r10, g10, b10, a10 := f.at(x0+1, y0)
	r01, g01, b01, a01 := f.at(x0, y0+1)
	r11, g11, b11, a11 := f.at(x0+1, y0+1)
	lerp2 := func(c00, c10, c01, c11 float32) float32 {
		top := c00 + (c10-c00)*tx
		bot := c01 + (c11-c01)*tx
		return top + (bot-top)*ty
	}
	return lerp2(r00, r10, r01, r11), lerp2(g00, g10, g01, g11),
		lerp2(b00, b10, b01, b11), lerp2(a00, a10, a01, a11)
}

// Luma returns the perceptual brightness of a pixel.
func (f *Frame) Luma(x, y int) float32 {
	r, g, b, _ := f.at(x, y)
	return luma(r, g, b)
}

// Intensity returns the mean brightness over the whole frame, a cheap scalar
// summary of what is on screen.
func (f *Frame) Intensity() float32 {
	if f.W*f.H == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < len(f.Pix); i += 4 {
		sum += luma(f.Pix[i], f.Pix[i+1], f.Pix[i+2])
	}
	return sum / float32(f.W*f.H)
}

func (f *Frame) clamp() {
	for i, v := range f.Pix {
		if !(v > 0) { // also catches NaN
			f.Pix[i] = 0
		} else if v > 1 {
			f.Pix[i] = 1
		}
	}
}

func luma(r, g, b float32) float32 {
	return 0.299*r + 0.587*g + 0.114*b
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
