package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "sheet")

const (
	csvDelimiter = ';'
	fileSuffix   = ".csv"
)

// ErrFilename is returned for names not of the form productId_sheetNumber.csv.
var ErrFilename = errors.New("sheet filename must have the form productId_sheetNumber.csv")

// Filename builds the name a sheet is stored under.
func Filename(productID, sheetNumber string) string {
	return productID + "_" + sheetNumber + fileSuffix
}

// ParseFilename splits a stored sheet's filename into product id and
// formatted sheet number.
func ParseFilename(name string) (productID, sheetNumber string, err error) {
	if !strings.HasSuffix(name, fileSuffix) {
		return "", "", fmt.Errorf("%q: %w", name, ErrFilename)
	}
	parts := strings.Split(strings.TrimSuffix(name, fileSuffix), "_")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%q: %w", name, ErrFilename)
	}
	return parts[0], parts[1], nil
}

// Write stores the sheet as semicolon separated boxName;text;confidence rows.
// Confidence is written with one decimal and rounded down, so a value below
// 1 never reads back as confident.
func (s *Sheet) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvDelimiter
	if err := cw.Write([]string{"boxName", "text", "confidence"}); err != nil {
		return err
	}
	for _, b := range s.boxes {
		if err := cw.Write([]string{b.Name, b.Text, formatConfidence(b.Confidence)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read fills the sheet from rows written by Write. The frame row and rows
// naming unknown boxes are skipped.
func (s *Sheet) Read(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.Comma = csvDelimiter
	cr.FieldsPerRecord = -1

	for line := 0; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read sheet: %w", err)
		}
		if line == 0 {
			continue
		}
		if len(row) != 3 {
			return fmt.Errorf("line %d: expected 3 fields, got %d", line+1, len(row))
		}
		name, text := row[0], row[1]
		conf, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid confidence %q: %w", line+1, row[2], err)
		}
		if name == FrameBox {
			continue
		}
		b := s.byName[name]
		if b == nil {
			log.WithField("box", name).Warn("skipped unexpected box")
			continue
		}
		b.Text = text
		b.Confidence = conf
	}
}

// Load reads the sheet stored at path into a fresh sheet of layout l.
func Load(path string, l Layout) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet: %w", err)
	}
	defer f.Close()

	s := New(l)
	if err := s.Read(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.WithField("path", path).Debug("loaded sheet")
	return s, nil
}

// Bytes returns the CSV encoding of s.
func (s *Sheet) Bytes() []byte {
	var sb strings.Builder
	// strings.Builder never fails.
	_ = s.Write(&sb)
	return []byte(sb.String())
}

func formatConfidence(c float64) string {
	return strconv.FormatFloat(math.Floor(c*10+1e-9)/10, 'f', 1, 64)
}
