package recognize

import (
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/detection"
	"github.com/ironsheep/tagscan/internal/imaging"
)

// refineBox finds the printed corners around the nominal box position and
// returns the interior of the box they span, in page coordinates. An empty
// rectangle means no corners were found.
func (c Config) refineBox(gray *image.Gray, nominal image.Rectangle, debug imaging.DebugSink) image.Rectangle {
	window := image.Rect(
		nominal.Min.X-c.SearchMargin, nominal.Min.Y-c.SearchMargin,
		nominal.Max.X+c.SearchMargin, nominal.Max.Y+c.SearchMargin,
	).Intersect(gray.Bounds())
	if window.Dx() < 2 || window.Dy() < 2 {
		return image.Rectangle{}
	}

	corners := detection.Harris(subGray(gray, window), c.HarrisBlockSize, c.HarrisK).Centroids(c.HarrisFraction)
	if len(corners) == 0 {
		return image.Rectangle{}
	}
	x0, y0 := int(corners[0].X), int(corners[0].Y)
	x1, y1 := x0, y0
	for _, p := range corners[1:] {
		x0, x1 = min(x0, int(p.X)), max(x1, int(p.X))
		y0, y1 = min(y0, int(p.Y)), max(y1, int(p.Y))
	}
	if imaging.Enabled(debug) {
		debug.WriteImage("00_cornerImg", imaging.GrayToNRGBA(subGray(gray, window)))
	}

	// Not image.Rect: an inverted result must stay empty.
	return image.Rectangle{
		Min: image.Pt(window.Min.X+x0+c.CornerBorder, window.Min.Y+y0+c.CornerBorder),
		Max: image.Pt(window.Min.X+x1-c.CornerBorder, window.Min.Y+y1-c.CornerBorder),
	}
}

// isolateInk separates the ink of a tag from noise and stray marks in the
// blurred gray cell. It returns a mask holding the filled outlines of the
// ink blobs that belong to the tag, or nil if the cell is empty.
func (c Config) isolateInk(cell *image.Gray, logger *logrus.Entry, debug imaging.DebugSink) *image.Gray {
	w, h := cell.Bounds().Dx(), cell.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}

	threshold := imaging.AdaptiveThreshold(cell, c.ThresholdBlockSize, c.ThresholdC)
	opened := imaging.Erode(threshold, 2, 2)
	closed := imaging.Dilate(opened, 5, 5)

	maxArea := w * h / 4
	labels := detection.Label(closed, 8)
	cleaned := labels.Mask(func(comp detection.Component) bool {
		cw, ch := comp.Bounds.Dx(), comp.Bounds.Dy()
		boxArea := cw * ch
		fields := logrus.Fields{"area": comp.Area, "bounds": comp.Bounds}
		switch {
		case comp.Area < c.MinComponentArea:
			return false
		case comp.Area > maxArea:
			logger.WithFields(fields).Debug("component removed, too big")
			return false
		case float64(min(cw, ch))/float64(max(cw, ch)) < c.MinAspectRatio:
			logger.WithFields(fields).Debug("component removed, too elongated")
			return false
		case boxArea > maxArea:
			logger.WithFields(fields).Debug("component removed, bounding box too big")
			return false
		case float64(comp.Area)/float64(boxArea) < c.ComponentFillRatio:
			logger.WithFields(fields).Debug("component removed, too sparsely filled")
			return false
		}
		return true
	})

	joined := imaging.Dilate(imaging.Close(cleaned, 18, 12), 5, 5)
	if imaging.Enabled(debug) {
		debug.WriteImage("02_thresholdImg", imaging.GrayToNRGBA(threshold))
		debug.WriteImage("03_openedImg", imaging.GrayToNRGBA(opened))
		debug.WriteImage("04_closedImg", imaging.GrayToNRGBA(closed))
		debug.WriteImage("07_cleanedImg", imaging.GrayToNRGBA(cleaned))
		debug.WriteImage("08_dilatedImg", imaging.GrayToNRGBA(joined))
	}

	contours := detection.FindContours(joined, detection.External, 0)
	if len(contours) == 0 {
		return nil
	}

	// Take blobs, largest first, as long as they fill the area they add to
	// the common bounding box well enough.
	mask := image.NewGray(image.Rect(0, 0, w, h))
	var common image.Rectangle
	for i, cnt := range contours {
		r := detection.BoundingRect(cnt)
		if i == 0 {
			common = r
			imaging.FillPolygon(mask, cnt)
			continue
		}
		merged := common.Union(r)
		added := merged.Dx()*merged.Dy() - common.Dx()*common.Dy()
		if float64(r.Dx()*r.Dy())/float64(added+1) > c.MinMergeFillRatio {
			common = merged
			imaging.FillPolygon(mask, cnt)
		}
	}
	if imaging.Enabled(debug) {
		debug.WriteImage("09_maskImg", imaging.GrayToNRGBA(mask))
	}

	cx := float64(common.Min.X) + float64(common.Dx())/2
	cy := float64(common.Min.Y) + float64(common.Dy())/2
	d := float64(c.MinBorderDistance)
	if cx < d || cx > float64(w)-d || cy < d || cy > float64(h)-d {
		logger.WithFields(logrus.Fields{"center_x": cx, "center_y": cy}).Debug("ink too close to border")
		return nil
	}

	if filled := float64(imaging.CountInk(mask)) / float64(w*h); filled < c.MinInkFraction {
		logger.WithField("filled", filled).Debug("not filled enough")
		return nil
	}
	return mask
}

// subGray copies r out of g into an image with its origin at (0,0).
func subGray(g *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(g.Bounds())
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		src := g.PixOffset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+r.Dx()], g.Pix[src:src+r.Dx()])
	}
	return out
}
