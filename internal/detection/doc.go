// Package detection finds the geometric structure of a scanned sheet.
//
// The package works on binary masks produced by the imaging package and
// provides the building blocks of the frame search:
//
//   - Connected component labeling with area, bounding box and centroid
//   - Boundary tracing of components and of the holes inside them
//   - Polygon simplification (Douglas-Peucker), convex hulls and minimum
//     area rotated rectangles
//   - The Hough line transform and the Harris corner response
//
// # Frame Finders
//
// Every product sheet carries a thick printed rectangle, the frame. Two
// FrameFinder implementations locate it:
//
//  1. ContourFrameFinder traces the outlines of the thresholded image and takes
//     the largest one that simplifies to four corners. It is fast and exact
//     when the frame is printed and scanned cleanly.
//  2. LineFrameFinder looks for long straight lines, rasterizes them across the
//     whole image and takes the hull of their crossings. It recovers frames whose
//     outline is broken by folds, staples or handwriting.
//
// Both reject a frame covering less than MinFillRatio of the image. Chain runs
// finders in order; the splitter uses the contour finder first and falls back
// to the line finder.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
//
// Frame corners are returned in the coordinates of the image passed in, so a
// sub-image yields corners relative to its parent.
package detection
