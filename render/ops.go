package render

import "math"

const tau = 2 * math.Pi

// generatorOp fills dst from one of the generators. Pixel coordinates are
// normalized to the unit square.
func generatorOp(dst *Frame, name string, argv []float32, t float64) {
	w, h := dst.W, dst.H
	switch name {
	case "osc":
		freq, sync, offset := float64(argv[0]), float64(argv[1]), float64(argv[2])
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				u := (float64(x) + 0.5) / float64(w)
				phase := tau * (u*freq/10 + t*sync)
				r := float32(0.5 + 0.5*math.Sin(phase))
				g := float32(0.5 + 0.5*math.Sin(phase+offset))
				b := float32(0.5 + 0.5*math.Sin(phase+2*offset))
				dst.set(x, y, r, g, b, 1)
			}
		}
	case "noise":
		scale, speed := float64(argv[0]), float64(argv[1])
		z := t * speed * 10
		z0 := math.Floor(z)
		tz := float32(z - z0)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				u := (float64(x) + 0.5) / float64(w) * scale
				v := (float64(y) + 0.5) / float64(h) * scale
				n := valueNoise(u, v, int32(z0))
				n += (valueNoise(u, v, int32(z0)+1) - n) * tz
				dst.set(x, y, n, n, n, 1)
			}
		}
	case "shape":
		sides, radius, smoothing := float64(argv[0]), float64(argv[1]), float64(argv[2])
		if sides < 1 {
			sides = 1
		}
		seg := tau / sides
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dx := (float64(x)+0.5)/float64(w) - 0.5
				dy := (float64(y)+0.5)/float64(h) - 0.5
				a := math.Atan2(dy, dx) + math.Pi/2
				// distance to the edge of a regular polygon
				d := math.Cos(math.Floor(0.5+a/seg)*seg-a) * math.Hypot(dx, dy)
				v := float32(1 - smoothstep(radius, radius+smoothing, d))
				dst.set(x, y, v, v, v, 1)
			}
		}
	case "gradient":
		speed := float64(argv[0])
		b := float32(0.5 + 0.5*math.Sin(t*speed))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				u := float32(x) / float32(w)
				v := float32(y) / float32(h)
				dst.set(x, y, u, v, b, 1)
			}
		}
	case "solid":
		dst.Fill(argv[0], argv[1], argv[2], argv[3])
	}
}

// coordOp resamples src into dst through one coordinate transform. Sampling
// wraps, so transforms tile.
func coordOp(dst, src *Frame, name string, argv []float32, t float64) {
	w, h := dst.W, dst.H
	resample := func(f func(u, v float64) (float64, float64)) {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				u := (float64(x) + 0.5) / float64(w)
				v := (float64(y) + 0.5) / float64(h)
				su, sv := f(u, v)
				r, g, b, a := src.Sample(float32(su), float32(sv))
				dst.set(x, y, r, g, b, a)
			}
		}
	}
	switch name {
	case "rotate":
		angle := float64(argv[0]) + t*float64(argv[1])
		sin, cos := math.Sincos(angle)
		resample(func(u, v float64) (float64, float64) {
			du, dv := u-0.5, v-0.5
			return 0.5 + du*cos - dv*sin, 0.5 + du*sin + dv*cos
		})
	case "scale":
		fx := nonZero(float64(argv[0]) * float64(argv[1]))
		fy := nonZero(float64(argv[0]) * float64(argv[2]))
		resample(func(u, v float64) (float64, float64) {
			return 0.5 + (u-0.5)/fx, 0.5 + (v-0.5)/fy
		})
	case "pixelate":
		px, py := math.Max(float64(argv[0]), 1), math.Max(float64(argv[1]), 1)
		resample(func(u, v float64) (float64, float64) {
			return (math.Floor(u*px) + 0.5) / px, (math.Floor(v*py) + 0.5) / py
		})
	case "repeat":
		rx, ry := float64(argv[0]), float64(argv[1])
		ox, oy := float64(argv[2]), float64(argv[3])
		resample(func(u, v float64) (float64, float64) {
			su, sv := u*rx, v*ry
			if math.Mod(math.Floor(sv), 2) != 0 {
				su += ox
			}
			if math.Mod(math.Floor(su), 2) != 0 {
				sv += oy
			}
			return su, sv
		})
	case "kaleid":
		n := math.Max(float64(argv[0]), 1)
		seg := tau / n
		resample(func(u, v float64) (float64, float64) {
			du, dv := u-0.5, v-0.5
			r := math.Hypot(du, dv)
			a := math.Mod(math.Atan2(dv, du), seg)
			if a < 0 {
				a += seg
			}
			a = math.Abs(a - seg/2)
			return 0.5 + r*math.Cos(a), 0.5 + r*math.Sin(a)
		})
	case "scrollX":
		shift := float64(argv[0]) + t*float64(argv[1])
		resample(func(u, v float64) (float64, float64) { return u + shift, v })
	case "scrollY":
		shift := float64(argv[0]) + t*float64(argv[1])
		resample(func(u, v float64) (float64, float64) { return u, v + shift })
	}
}

// colorOp rewrites the pixels of f in place.
func colorOp(f *Frame, name string, argv []float32) {
	pix := f.Pix
	perChannel := func(fn func(v float32) float32) {
		for i := 0; i < len(pix); i += 4 {
			pix[i] = fn(pix[i])
			pix[i+1] = fn(pix[i+1])
			pix[i+2] = fn(pix[i+2])
		}
	}
	switch name {
	case "color":
		for i := 0; i < len(pix); i += 4 {
			pix[i] *= argv[0]
			pix[i+1] *= argv[1]
			pix[i+2] *= argv[2]
		}
	case "brightness":
		perChannel(func(v float32) float32 { return v + argv[0] })
	case "contrast":
		perChannel(func(v float32) float32 { return (v-0.5)*argv[0] + 0.5 })
	case "invert":
		perChannel(func(v float32) float32 { return v*(1-argv[0]) + (1-v)*argv[0] })
	case "saturate":
		for i := 0; i < len(pix); i += 4 {
			l := luma(pix[i], pix[i+1], pix[i+2])
			pix[i] = l + (pix[i]-l)*argv[0]
			pix[i+1] = l + (pix[i+1]-l)*argv[0]
			pix[i+2] = l + (pix[i+2]-l)*argv[0]
		}
	case "posterize":
		bins := math.Max(float64(argv[0]), 1)
		gamma := nonZero(float64(argv[1]))
		perChannel(func(v float32) float32 {
			c := math.Pow(clamp01(float64(v)), gamma)
			c = math.Floor(c*bins) / bins
			return float32(math.Pow(c, 1/gamma))
		})
	case "luma":
		th, tol := float64(argv[0]), float64(argv[1])
		for i := 0; i < len(pix); i += 4 {
			a := float32(smoothstep(th-tol, th+tol, float64(luma(pix[i], pix[i+1], pix[i+2]))))
			pix[i] *= a
			pix[i+1] *= a
			pix[i+2] *= a
			pix[i+3] *= a
		}
	case "thresh":
		th, tol := float64(argv[0]), float64(argv[1])
		for i := 0; i < len(pix); i += 4 {
			v := float32(smoothstep(th-tol, th+tol, float64(luma(pix[i], pix[i+1], pix[i+2]))))
			pix[i], pix[i+1], pix[i+2] = v, v, v
		}
	}
}

// modulateOp resamples cur into dst with per-pixel displacement read from the
// modulating source frame.
func modulateOp(dst, cur, src *Frame, name string, argv []float32) {
	w, h := dst.W, dst.H
	amt := float64(argv[0])
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := (float64(x) + 0.5) / float64(w)
			v := (float64(y) + 0.5) / float64(h)
			mr, mg, _, _ := src.at(x, y)
			var su, sv float64
			switch name {
			case "modulate":
				su = u + float64(mr)*amt
				sv = v + float64(mg)*amt
			case "modulateScale":
				f := nonZero(1 + (float64(mr)-0.5)*amt)
				su = 0.5 + (u-0.5)/f
				sv = 0.5 + (v-0.5)/f
			case "modulateRotate":
				sin, cos := math.Sincos(float64(mr) * amt)
				du, dv := u-0.5, v-0.5
				su = 0.5 + du*cos - dv*sin
				sv = 0.5 + du*sin + dv*cos
			}
			r, g, b, a := cur.Sample(float32(su), float32(sv))
			dst.set(x, y, r, g, b, a)
		}
	}
}

// valueNoise is lattice value noise in [0,1]: hashed corners, smoothly
// interpolated. z selects the time slice.
func valueNoise(u, v float64, z int32) float32 {
	x0, y0 := math.Floor(u), math.Floor(v)
	tx := float32(smoothstep(0, 1, u-x0))
	ty := float32(smoothstep(0, 1, v-y0))
	ix, iy := int32(x0), int32(y0)
	n00 := hash3(ix, iy, z)
	n10 := hash3(ix+1, iy, z)
	n01 := hash3(ix, iy+1, z)
	n11 := hash3(ix+1, iy+1, z)
	top := n00 + (n10-n00)*tx
	bot := n01 + (n11-n01)*tx
	return top + (bot-top)*ty
}

func hash3(x, y, z int32) float32 {
	h := uint32(x)*0x8da6b343 + uint32(y)*0xd8163841 + uint32(z)*0xcb1ab31f
	h ^= h >> 13
	h *= 0x9e3779b1
	h ^= h >> 16
	return float32(h&0xffffff) / 0x1000000
}

func smoothstep(lo, hi, x float64) float64 {
	if hi == lo {
		if x < lo {
			return 0
		}
		return 1
	}
	t := clamp01((x - lo) / (hi - lo))
	return t * t * (3 - 2*t)
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}

func nonZero(x float64) float64 {
	if x == 0 {
		return 1e-6
	}
	return x
}
