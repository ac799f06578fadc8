package imaging

import "image"

// Dilate grows the Ink area of mask with a kw x kh rectangular structuring element
// anchored at its center.
func Dilate(mask *image.Gray, kw, kh int) *image.Gray {
	return morph(mask, kw, kh, true)
}

// Erode shrinks the Ink area of mask with a kw x kh rectangular structuring element.
// Pixels outside the image do not erode the border.
func Erode(mask *image.Gray, kw, kh int) *image.Gray {
	return morph(mask, kw, kh, false)
}

// Close dilates and then erodes mask, bridging gaps narrower than the kernel.
func Close(mask *image.Gray, kw, kh int) *image.Gray {
	return Erode(Dilate(mask, kw, kh), kw, kh)
}

// morph applies a separable rectangular min/max filter. The rectangle is split
// into a horizontal and a vertical pass, each evaluated with a running count.
func morph(mask *image.Gray, kw, kh int, dilate bool) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	src := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src[y*w+x] = mask.Pix[y*mask.Stride+x] != 0
		}
	}

	tmp := make([]bool, w*h)
	for y := 0; y < h; y++ {
		pass1D(src[y*w:(y+1)*w], tmp[y*w:(y+1)*w], kw, dilate)
	}
	res := make([]bool, w*h)
	col := make([]bool, h)
	out := make([]bool, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = tmp[y*w+x]
		}
		pass1D(col, out, kh, dilate)
		for y := 0; y < h; y++ {
			res[y*w+x] = out[y]
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range res {
		if v {
			dst.Pix[(i/w)*dst.Stride+i%w] = Ink
		}
	}
	return dst
}

// pass1D filters in with a window of size k anchored at k/2.
func pass1D(in, out []bool, k int, dilate bool) {
	n := len(in)
	if k <= 1 {
		copy(out, in)
		return
	}
	anchor := k / 2
	prefix := make([]int, n+1)
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i]
		if in[i] {
			prefix[i+1]++
		}
	}
	for i := 0; i < n; i++ {
		lo := i - anchor
		hi := lo + k
		if lo < 0 {
			lo = 0
		}
		if hi > n {
			hi = n
		}
		count := prefix[hi] - prefix[lo]
		if dilate {
			out[i] = count > 0
		} else {
			out[i] = count == hi-lo
		}
	}
}
