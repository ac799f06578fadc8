package sheet

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "milk_#1.csv", Filename("milk", "#1"))

	id, num, err := ParseFilename("milk_#1.csv")
	require.NoError(t, err)
	assert.Equal(t, "milk", id)
	assert.Equal(t, "#1", num)
}

func TestParseFilename_Invalid(t *testing.T) {
	for _, name := range []string{"milk.csv", "milk_1_2.csv", "milk_1.txt", "milk_1.csv.jpg"} {
		_, _, err := ParseFilename(name)
		assert.ErrorIs(t, err, ErrFilename, name)
	}
}

func TestSheet_WriteRead(t *testing.T) {
	s := New(DefaultLayout())
	s.SetName("Milk; fresh")
	s.SetSheetNumber("#1")
	s.Box(PriceBox).Text = "1.20 CHF"
	s.Box(PriceBox).Confidence = 0.96
	s.Box("dataBox3(0,3)").Text = "ALICE"

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 81)
	assert.Equal(t, "boxName;text;confidence", lines[0])
	assert.Equal(t, "frameBox;;1.0", lines[1])
	assert.Contains(t, buf.String(), "priceBox;1.20 CHF;0.9\n")

	loaded := New(DefaultLayout())
	require.NoError(t, loaded.Read(&buf))
	assert.Equal(t, "Milk; fresh", loaded.Name())
	assert.Equal(t, "ALICE", loaded.Box("dataBox3(0,3)").Text)
	assert.InDelta(t, 0.9, loaded.Box(PriceBox).Confidence, 1e-9)
	assert.False(t, loaded.IsFullyConfident())
}

func TestSheet_ReadSkipsUnknownBoxes(t *testing.T) {
	in := "boxName;text;confidence\n" +
		"frameBox;ignored;0.0\n" +
		"bogusBox;x;1.0\n" +
		"nameBox;Bread;1.0\n"
	s := New(DefaultLayout())
	require.NoError(t, s.Read(strings.NewReader(in)))
	assert.Equal(t, "Bread", s.Name())
	assert.Equal(t, "", s.Box(FrameBox).Text)
	assert.Equal(t, 1.0, s.Box(FrameBox).Confidence)
}

func TestSheet_ReadInvalid(t *testing.T) {
	s := New(DefaultLayout())
	err := s.Read(strings.NewReader("boxName;text;confidence\nnameBox;Bread;high\n"))
	assert.Error(t, err)

	err = s.Read(strings.NewReader("boxName;text;confidence\nnameBox;Bread\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	s := New(DefaultLayout())
	s.SetName("Bread")
	s.SetSheetNumber("#3")
	path := filepath.Join(t.TempDir(), s.Filename())
	require.NoError(t, os.WriteFile(path, s.Bytes(), 0o644))

	loaded, err := Load(path, DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, "Bread", loaded.Name())
	assert.Equal(t, "#3", loaded.SheetNumber())

	_, err = Load(filepath.Join(t.TempDir(), "missing_1.csv"), DefaultLayout())
	assert.Error(t, err)
}

func TestFormatConfidence(t *testing.T) {
	assert.Equal(t, "1.0", formatConfidence(1))
	assert.Equal(t, "0.9", formatConfidence(0.96))
	assert.Equal(t, "0.7", formatConfidence(0.7))
	assert.Equal(t, "0.0", formatConfidence(0))
}
