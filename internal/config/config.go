// Package config loads the settings of a tagscan run from tagscan.yaml,
// TAGSCAN_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ironsheep/tagscan/internal/detection"
	"github.com/ironsheep/tagscan/internal/ocr"
	"github.com/ironsheep/tagscan/internal/recognize"
	"github.com/ironsheep/tagscan/internal/sheet"
	"github.com/ironsheep/tagscan/internal/split"
)

var log = logrus.WithField("component", "config")

// Config holds all configuration of a run.
type Config struct {
	Paths     PathsConfig         `mapstructure:"paths"`
	Layout    sheet.Layout        `mapstructure:"layout"`
	Split     SplitConfig         `mapstructure:"split"`
	Recognize recognize.Config    `mapstructure:"recognize"`
	OCR       ocr.TesseractConfig `mapstructure:"ocr"`
	Output    OutputConfig        `mapstructure:"output"`
	LogLevel  string              `mapstructure:"log_level"`
}

// PathsConfig locates the accounting data. Relative paths are taken
// relative to Root.
type PathsConfig struct {
	Root    string `mapstructure:"root"`
	Scans   string `mapstructure:"scans"`
	Sheets  string `mapstructure:"sheets"`
	Output  string `mapstructure:"output"`
	Catalog string `mapstructure:"catalog"`

	// Debug receives the intermediate images of every stage when set.
	Debug string `mapstructure:"debug"`
}

// SplitConfig holds the scan splitter settings.
type SplitConfig struct {
	Regions []split.Region `mapstructure:"regions"`

	// Width and Height are the resolution scans are resized to.
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`

	// Rotation in degrees is applied to every scan before splitting.
	Rotation float64 `mapstructure:"rotation"`

	MinSheetSize   int     `mapstructure:"min_sheet_size"`
	BlurRadius     float64 `mapstructure:"blur_radius"`
	LineMinLength  int     `mapstructure:"line_min_length"`
	LineCropMargin int     `mapstructure:"line_crop_margin"`
	FrameFillRatio float64 `mapstructure:"frame_fill_ratio"`
	PolyEpsilon    float64 `mapstructure:"poly_epsilon"`
}

// OutputConfig controls what is written for every recognized sheet.
type OutputConfig struct {
	ImageWidth  int  `mapstructure:"image_width"`
	JPEGQuality int  `mapstructure:"jpeg_quality"`
	Clear       bool `mapstructure:"clear"`
}

// Load reads the configuration. An explicit path must exist; without one
// tagscan.yaml is searched in ., ./config and $HOME/.tagscan and may be
// missing.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("tagscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.tagscan")
	}

	v.SetEnvPrefix("TAGSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; environment and defaults only.
	} else {
		log.WithField("file", v.ConfigFileUsed()).Debug("loaded config file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	lf := detection.NewLineFrameFinder()
	cf := detection.NewContourFrameFinder()
	return &Config{
		Paths: PathsConfig{
			Root:    ".",
			Scans:   "0_input/scans",
			Sheets:  "0_input/sheets",
			Output:  "2_taggedProductSheets",
			Catalog: "0_input/catalog.yaml",
		},
		Layout: sheet.DefaultLayout(),
		Split: SplitConfig{
			Regions:        split.DefaultRegions(),
			Width:          3672,
			Height:         6528,
			MinSheetSize:   1000 * 1500,
			BlurRadius:     3,
			LineMinLength:  lf.MinLineLength,
			LineCropMargin: lf.CropMargin,
			FrameFillRatio: cf.MinFillRatio,
			PolyEpsilon:    cf.Epsilon,
		},
		Recognize: recognize.DefaultConfig(),
		OCR:       ocr.TesseractConfig{Language: "eng"},
		Output: OutputConfig{
			ImageWidth:  600,
			JPEGQuality: 80,
			Clear:       true,
		},
		LogLevel: "info",
	}
}

// setDefaults registers every key of Default so that each one can be
// overridden from the environment.
func setDefaults(v *viper.Viper) error {
	var flat map[string]interface{}
	if err := mapstructure.Decode(*Default(), &flat); err != nil {
		return fmt.Errorf("failed to build config defaults: %w", err)
	}
	register(v, "", flat)
	return nil
}

func register(v *viper.Viper, prefix string, values map[string]interface{}) {
	for k, val := range values {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := asMap(val); ok {
			register(v, key, nested)
			continue
		}
		v.SetDefault(key, val)
	}
}

// asMap turns a nested struct default into a map of its fields.
func asMap(val interface{}) (map[string]interface{}, bool) {
	if m, ok := val.(map[string]interface{}); ok {
		return m, true
	}
	switch val.(type) {
	case sheet.Layout, recognize.Config, ocr.TesseractConfig, PathsConfig, SplitConfig, OutputConfig:
		var m map[string]interface{}
		if err := mapstructure.Decode(val, &m); err != nil {
			return nil, false
		}
		return m, true
	}
	return nil, false
}

// Validate reports settings no run can work with.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := c.Recognize.Validate(); err != nil {
		return fmt.Errorf("recognize: %w", err)
	}
	if err := c.Split.Validate(); err != nil {
		return fmt.Errorf("split: %w", err)
	}
	if c.Output.ImageWidth <= 0 {
		return fmt.Errorf("output image width must be positive, got %d", c.Output.ImageWidth)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output JPEG quality must be in [1,100], got %d", c.Output.JPEGQuality)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// Validate checks the regions and sizes of the splitter.
func (c SplitConfig) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("at least one sheet region is required")
	}
	for i, r := range c.Regions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("region %d: %w", i, err)
		}
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("scan size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.MinSheetSize <= 0 || c.LineMinLength <= 0 {
		return fmt.Errorf("min sheet size and line length must be positive")
	}
	if c.FrameFillRatio <= 0 || c.FrameFillRatio > 1 {
		return fmt.Errorf("frame fill ratio must be in (0,1], got %g", c.FrameFillRatio)
	}
	return nil
}

// Splitter builds a splitter producing sheets of layout l.
func (c SplitConfig) Splitter(l sheet.Layout) *split.Splitter {
	s := split.New(l)
	s.Regions = append([]split.Region(nil), c.Regions...)
	s.Width, s.Height = c.Width, c.Height
	s.MinSheetSize = c.MinSheetSize
	s.BlurRadius = c.BlurRadius
	s.ContourFinder.Epsilon = c.PolyEpsilon
	s.ContourFinder.MinFillRatio = c.FrameFillRatio
	s.LineFinder.MinLineLength = c.LineMinLength
	s.LineFinder.CropMargin = c.LineCropMargin
	s.LineFinder.MinFillRatio = c.FrameFillRatio
	return s
}

// Resolve returns p joined to Root unless it is absolute or empty.
func (p PathsConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// ScanDir returns the directory scans are read from.
func (p PathsConfig) ScanDir() string { return p.Resolve(p.Scans) }

// SheetsDir returns the root of the stored sheet state directories.
func (p PathsConfig) SheetsDir() string { return p.Resolve(p.Sheets) }

// OutputDir returns the directory recognized sheets are written to.
func (p PathsConfig) OutputDir() string { return p.Resolve(p.Output) }

// CatalogFile returns the product and member catalog.
func (p PathsConfig) CatalogFile() string { return p.Resolve(p.Catalog) }

// DebugDir returns the debug image directory, or "" if disabled.
func (p PathsConfig) DebugDir() string { return p.Resolve(p.Debug) }
