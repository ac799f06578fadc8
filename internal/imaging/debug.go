package imaging

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
)

// DebugSink receives intermediate images of the recognition pipeline.
// Implementations must not retain img after WriteImage returns.
type DebugSink interface {
	WriteImage(name string, img image.Image)
}

// Discard drops every image.
var Discard DebugSink = discard{}

type discard struct{}

func (discard) WriteImage(string, image.Image) {}

// DirSink writes each image as a JPEG file named after it into Dir.
type DirSink struct {
	Dir     string
	Quality int
}

// WriteImage saves img as Dir/name.jpg. Failures are logged and otherwise ignored.
func (d DirSink) WriteImage(name string, img image.Image) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		logrus.WithError(err).WithField("dir", d.Dir).Warn("cannot create debug directory")
		return
	}
	quality := d.Quality
	if quality <= 0 {
		quality = 75
	}
	path := filepath.Join(d.Dir, name+".jpg")
	if err := imaging.Save(img, path, imaging.JPEGQuality(quality)); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("cannot write debug image")
	}
}

type prefixed struct {
	sink   DebugSink
	prefix string
}

// WithPrefix returns a sink that prepends prefix and an underscore to every name.
func WithPrefix(sink DebugSink, prefix string) DebugSink {
	if sink == nil {
		return Discard
	}
	if _, ok := sink.(discard); ok {
		return sink
	}
	return prefixed{sink: sink, prefix: prefix}
}

func (p prefixed) WriteImage(name string, img image.Image) {
	p.sink.WriteImage(p.prefix+"_"+name, img)
}

// Enabled reports whether images written to sink go anywhere.
func Enabled(sink DebugSink) bool {
	if sink == nil {
		return false
	}
	_, off := sink.(discard)
	return !off
}
