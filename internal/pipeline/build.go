package pipeline

import (
	"github.com/ironsheep/tagscan/internal/config"
	"github.com/ironsheep/tagscan/internal/imaging"
	"github.com/ironsheep/tagscan/internal/ocr"
	"github.com/ironsheep/tagscan/internal/store"
)

// New builds a pipeline over the accounting data named by cfg. A nil engine
// selects Tesseract with the configured language.
func New(cfg *config.Config, engine ocr.ScopedEngine) (*Pipeline, error) {
	catalog, err := store.LoadCatalog(cfg.Paths.CatalogFile())
	if err != nil {
		return nil, err
	}
	sink, err := store.NewSink(cfg.Paths.OutputDir(), cfg.Output.ImageWidth, cfg.Output.JPEGQuality)
	if err != nil {
		return nil, err
	}
	if engine == nil {
		engine = ocr.NewTesseract(cfg.OCR)
	}

	p := &Pipeline{
		Layout:      cfg.Layout,
		Splitter:    cfg.Split.Splitter(cfg.Layout),
		Recognizer:  cfg.Recognize,
		Candidates:  catalog,
		Stored:      store.NewDir(cfg.Paths.SheetsDir(), cfg.Layout),
		Sink:        sink,
		Engine:      engine,
		Rotation:    cfg.Split.Rotation,
		ClearOutput: cfg.Output.Clear,
		Debug:       imaging.Discard,
	}
	if dir := cfg.Paths.DebugDir(); dir != "" {
		p.Debug = imaging.DirSink{Dir: dir}
	}
	return p, nil
}
