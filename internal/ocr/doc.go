// Package ocr is the boundary to the character recognition engine.
//
// The recognizer only ever reads single lines of text out of small, already
// straightened crops, so an Engine has a single method. Tesseract sessions are
// expensive to create; Tesseract therefore implements ScopedEngine and must
// be acquired once per batch:
//
//	err := ocr.Use(ocr.NewTesseract(cfg), func(e ocr.Engine) error {
//		return recognizeAll(e)
//	})
//
// Calling RecognizeLine on a Tesseract that is not acquired fails with
// ErrEngineNotAcquired.
//
// # Prerequisites
//
// Tesseract and the language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
package ocr
