// Package pipeline runs scans through splitting, recognition and storage.
//
// A run first splits every scan into sheet regions, then recognizes the
// non-empty regions with one OCR session and stores each sheet together
// with two audit images:
//
//	p := &pipeline.Pipeline{...}
//	res, err := p.Run(ctx, scans)
//	if errors.Is(err, recognize.ErrIntegrity) {
//		// stored sheets need manual repair
//	}
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/imaging"
	"github.com/ironsheep/tagscan/internal/ocr"
	"github.com/ironsheep/tagscan/internal/recognize"
	"github.com/ironsheep/tagscan/internal/sheet"
	"github.com/ironsheep/tagscan/internal/split"
	"github.com/ironsheep/tagscan/internal/store"
)

var log = logrus.WithField("component", "pipeline")

// Pipeline holds everything a run needs. It is not safe for concurrent use.
type Pipeline struct {
	Layout     sheet.Layout
	Splitter   *split.Splitter
	Recognizer recognize.Config
	Candidates recognize.CandidateProvider
	Stored     recognize.StoredSheets
	Sink       *store.Sink
	Engine     ocr.ScopedEngine

	// Rotation in degrees is applied to every scan before splitting.
	Rotation float64

	// ClearOutput empties the sink before recognizing. Sheets whose name is
	// already taken are then stored under their fallback name; without
	// ClearOutput the earlier sheet is replaced.
	ClearOutput bool

	Debug imaging.DebugSink

	fallbackNumber int
}

// Result summarizes a run.
type Result struct {
	Regions []*split.SheetRegion

	// Stored lists the filenames of the stored sheets in processing order.
	Stored []string

	// PartiallyFilled lists the scans with at least one empty region.
	PartiallyFilled []string

	// Unreadable lists the scans that could not be decoded.
	Unreadable []string
}

// Run splits and recognizes scans. It stops at the first error, which
// includes inconsistent stored sheets (recognize.ErrIntegrity).
func (p *Pipeline) Run(ctx context.Context, scans []string) (*Result, error) {
	res := &Result{}
	regions, err := p.Split(ctx, scans, res)
	if err != nil {
		return res, err
	}
	res.Regions = regions
	return res, p.Recognize(ctx, regions, res)
}

// Split loads every scan and splits it into sheet regions. Scans that cannot
// be decoded are skipped and recorded in res.
func (p *Pipeline) Split(ctx context.Context, scans []string, res *Result) ([]*split.SheetRegion, error) {
	var regions []*split.SheetRegion
	for _, path := range scans {
		if err := ctx.Err(); err != nil {
			return regions, err
		}
		img, err := imaging.Open(path)
		if err != nil {
			log.WithError(err).WithField("scan", path).Warn("scan could not be opened as an image")
			res.Unreadable = append(res.Unreadable, path)
			continue
		}

		sp := *p.Splitter
		sp.Debug = imaging.WithPrefix(p.debug(), filepath.Base(path))
		rs, err := sp.SplitScan(path, imaging.RotateBound(img, p.Rotation))
		if err != nil {
			return regions, err
		}
		regions = append(regions, rs...)
	}
	return regions, nil
}

// Recognize reads every non-empty region and stores the sheets. The OCR
// engine is held for the whole call.
func (p *Pipeline) Recognize(ctx context.Context, regions []*split.SheetRegion, res *Result) error {
	if p.ClearOutput {
		if err := p.Sink.Clear(); err != nil {
			return err
		}
		p.fallbackNumber = 0
	}

	cands, err := p.Candidates.Candidates()
	if err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}

	partial := map[string]bool{}
	err = ocr.Use(p.Engine, func(engine ocr.Engine) error {
		rec := recognize.New(p.Layout, cands, p.Stored, engine)
		rec.Config = p.Recognizer

		for _, r := range regions {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.IsEmpty {
				partial[r.ScanPath] = true
				continue
			}

			rec.Debug = imaging.WithPrefix(p.debug(), r.Name)
			s, err := rec.Recognize(r.Processed, r.Name, p.fallbackNumber)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Name, err)
			}
			filename, err := p.store(r, s)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Name, err)
			}
			res.Stored = append(res.Stored, filename)
		}
		return nil
	})

	for scan := range partial {
		res.PartiallyFilled = append(res.PartiallyFilled, scan)
	}
	sort.Strings(res.PartiallyFilled)
	return err
}

// store writes s and the audit images of r, resolving name clashes with
// sheets already in the sink.
func (p *Pipeline) store(r *split.SheetRegion, s *sheet.Sheet) (string, error) {
	filename := s.Filename()
	if p.Sink.Exists(filename) {
		logger := log.WithField("sheet", filename)
		if p.ClearOutput {
			logger.Info("sheet already stored in this run, resetting to fallback name")
			recognize.ResetToFallback(s, r.Name, p.fallbackNumber)
			filename = s.Filename()
		} else {
			logger.Info("overwriting sheet stored by an earlier run")
			if err := p.Sink.Remove(filename); err != nil {
				return "", err
			}
		}
	}

	if _, err := p.Sink.Store(s, filename); err != nil {
		return "", err
	}
	p.fallbackNumber++
	r.RecognizedName = filename

	if err := p.Sink.StoreImages(filename, r.Unprocessed, r.Processed); err != nil {
		return "", fmt.Errorf("failed to store audit images: %w", err)
	}
	return filename, nil
}

func (p *Pipeline) debug() imaging.DebugSink {
	if p.Debug == nil {
		return imaging.Discard
	}
	return p.Debug
}

var scanExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// IsScan reports whether path names a file the pipeline can read.
func IsScan(path string) bool {
	return scanExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanFiles returns the scans in dir in lexical order.
func ScanFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	var scans []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsScan(e.Name()) {
			scans = append(scans, filepath.Join(dir, e.Name()))
		}
	}
	return scans, nil
}
