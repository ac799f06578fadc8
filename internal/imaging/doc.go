// Package imaging provides the raster operations the sheet recognition pipeline
// is built from.
//
// This package implements grayscale conversion, blurring, global (Otsu) and local
// (adaptive) thresholding, rectangular morphology, geometric transforms
// (crop, resize, pad, rotate, perspective warp) and simple rasterization of lines
// and polygons. All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases rightward,
// and Y increases downward.
//
// # Masks
//
// Binary masks are *image.Gray values where foreground pixels are Ink (255) and
// background pixels are 0. Every function returning a mask returns one whose
// bounds start at (0,0), regardless of the bounds of its input.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive (top-left) and Max is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images. Operations
// on the same image should be synchronized by the caller if the image is mutable.
//
// # Debug Images
//
// Pipeline stages write their intermediate images to a DebugSink. Discard drops
// them; DirSink stores them as JPEG files for offline inspection. Sinks are
// chained with WithPrefix so that file names carry the scan, sheet and stage.
package imaging
