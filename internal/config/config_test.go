package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/tagscan/internal/recognize"
	"github.com/ironsheep/tagscan/internal/sheet"
	"github.com/ironsheep/tagscan/internal/split"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tagscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("loads defaults without a config file", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, sheet.DefaultLayout(), cfg.Layout)
		assert.Equal(t, recognize.DefaultConfig(), cfg.Recognize)
		assert.Equal(t, split.DefaultRegions(), cfg.Split.Regions)
		assert.Equal(t, 3672, cfg.Split.Width)
		assert.Equal(t, 6528, cfg.Split.Height)
		assert.Equal(t, 800, cfg.Split.LineMinLength)
		assert.Equal(t, 40, cfg.Split.LineCropMargin)
		assert.Equal(t, 600, cfg.Output.ImageWidth)
		assert.Equal(t, 80, cfg.Output.JPEGQuality)
		assert.True(t, cfg.Output.Clear)
		assert.Equal(t, "eng", cfg.OCR.Language)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads values from file", func(t *testing.T) {
		path := writeConfig(t, `
paths:
  root: /srv/store
  debug: /tmp/tagscan
split:
  rotation: 90
  regions:
    - {x0: 0, y0: 0, x1: 1, y1: 0.5}
    - {x0: 0, y0: 0.5, x1: 1, y1: 1}
recognize:
  min_matching_texts: 4
  max_edit_distance: 3
output:
  clear: false
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/srv/store", cfg.Paths.Root)
		assert.Equal(t, 90.0, cfg.Split.Rotation)
		assert.Equal(t, []split.Region{{0, 0, 1, .5}, {0, .5, 1, 1}}, cfg.Split.Regions)
		assert.Equal(t, 4, cfg.Recognize.MinMatchingTexts)
		assert.Equal(t, 3, cfg.Recognize.MaxEditDistance)
		assert.False(t, cfg.Output.Clear)

		// Untouched keys keep their defaults.
		assert.Equal(t, 25, cfg.Recognize.SearchMargin)
		assert.Equal(t, 3672, cfg.Split.Width)
		assert.Equal(t, "/tmp/tagscan", cfg.Paths.DebugDir())
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "output:\n  jpeg_quality: 70\n")
		t.Setenv("TAGSCAN_OUTPUT_JPEG_QUALITY", "95")
		t.Setenv("TAGSCAN_RECOGNIZE_CONFIDENCE_THRESHOLD", "0.7")
		t.Setenv("TAGSCAN_LOG_LEVEL", "debug")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 95, cfg.Output.JPEGQuality)
		assert.InDelta(t, .7, cfg.Recognize.ConfidenceThreshold, 1e-9)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		for name, content := range map[string]string{
			"region outside": "split:\n  regions:\n    - {x0: 0, y0: 0, x1: 1.5, y1: 1}\n",
			"quality":        "output:\n  jpeg_quality: 0\n",
			"log level":      "log_level: loud\n",
			"scan size":      "split:\n  width: 0\n",
			"layout":         "layout:\n  data_rows: 0\n",
		} {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err, name)
		}
	})
}

func TestPaths(t *testing.T) {
	p := Default().Paths
	p.Root = "/data"
	assert.Equal(t, "/data/0_input/scans", p.ScanDir())
	assert.Equal(t, "/data/0_input/sheets", p.SheetsDir())
	assert.Equal(t, "/data/2_taggedProductSheets", p.OutputDir())
	assert.Equal(t, "/data/0_input/catalog.yaml", p.CatalogFile())
	assert.Equal(t, "", p.DebugDir())

	p.Output = "/elsewhere"
	assert.Equal(t, "/elsewhere", p.OutputDir())
}

func TestSplitConfig_Splitter(t *testing.T) {
	c := Default().Split
	c.Width, c.Height = 1400, 1900
	c.MinSheetSize = 1234
	c.LineMinLength = 300
	c.FrameFillRatio = .4

	s := c.Splitter(sheet.DefaultLayout())
	assert.Equal(t, 1400, s.Width)
	assert.Equal(t, 1900, s.Height)
	assert.Equal(t, 1234, s.MinSheetSize)
	assert.Equal(t, 300, s.LineFinder.MinLineLength)
	assert.Equal(t, .4, s.ContourFinder.MinFillRatio)
	assert.Equal(t, .4, s.LineFinder.MinFillRatio)
	assert.Len(t, s.Regions, 4)
}
