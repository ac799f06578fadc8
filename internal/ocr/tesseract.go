package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "ocr")

// ErrEngineNotAcquired is returned when an engine is used outside of an
// Acquire/Release scope.
var ErrEngineNotAcquired = errors.New("ocr: engine used without being acquired")

// Engine recognizes the text of an image holding a single line.
type Engine interface {
	RecognizeLine(img image.Image) (string, error)
}

// ScopedEngine is an Engine holding a session that must be acquired before the
// first and released after the last recognition.
type ScopedEngine interface {
	Engine
	Acquire() error
	Release() error
}

// Use acquires e, runs fn with it and releases e again, also when fn fails.
func Use(e ScopedEngine, fn func(Engine) error) (err error) {
	if err := e.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire OCR engine: %w", err)
	}
	defer func() {
		if rerr := e.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("failed to release OCR engine: %w", rerr)
		}
	}()
	return fn(e)
}

// Func adapts a plain function to the Engine interface.
type Func func(img image.Image) (string, error)

// RecognizeLine calls f(img).
func (f Func) RecognizeLine(img image.Image) (string, error) {
	return f(img)
}

// TesseractConfig selects the Tesseract model.
type TesseractConfig struct {
	// Language is a Tesseract language code such as "eng" or "deu".
	Language string `mapstructure:"language"`

	// TessdataPrefix overrides the directory holding the language data.
	TessdataPrefix string `mapstructure:"tessdata_prefix"`

	// Whitelist restricts the characters Tesseract may return.
	Whitelist string `mapstructure:"whitelist"`
}

// Tesseract is a ScopedEngine backed by a gosseract client. The client is
// created by Acquire, reused for every line and closed by Release. A
// Tesseract may be used from several goroutines; calls are serialized.
type Tesseract struct {
	cfg TesseractConfig

	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract returns an engine that is not yet acquired.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg}
}

// Acquire creates the Tesseract session.
func (t *Tesseract) Acquire() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return fmt.Errorf("ocr: engine already acquired")
	}

	client := gosseract.NewClient()
	if t.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.cfg.TessdataPrefix); err != nil {
			client.Close()
			return fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(t.cfg.Language); err != nil {
		client.Close()
		return fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if t.cfg.Whitelist != "" {
		if err := client.SetWhitelist(t.cfg.Whitelist); err != nil {
			client.Close()
			return fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	t.client = client
	log.WithField("language", t.cfg.Language).Debug("acquired tesseract session")
	return nil
}

// Release closes the session. Releasing an engine that is not acquired is a no-op.
func (t *Tesseract) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	log.Debug("released tesseract session")
	return err
}

// RecognizeLine returns the trimmed text Tesseract reads in img.
func (t *Tesseract) RecognizeLine(img image.Image) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return "", ErrEngineNotAcquired
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}
