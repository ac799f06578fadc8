// Package store keeps product sheets on disk.
//
// Sheets of earlier runs live in one subdirectory per state below a root
// directory (active/, inactive/, ...). Dir lists and loads them. Sink writes
// the sheets of the current run into an output directory together with
// downscaled audit images of the scans they were read from.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/tagscan/internal/sheet"
)

var log = logrus.WithField("component", "store")

// Dir gives read access to stored sheets below Root.
type Dir struct {
	Root   string
	Layout sheet.Layout
}

// NewDir returns the stored sheet tree rooted at root.
func NewDir(root string, l sheet.Layout) *Dir {
	return &Dir{Root: root, Layout: l}
}

// StateDir returns the directory holding the sheets in state st.
func (d *Dir) StateDir(st sheet.State) string {
	return filepath.Join(d.Root, st.String())
}

// All lists every stored sheet in one of states, ordered by state and name.
// Missing state directories hold no sheets. Files whose names do not encode
// a product and sheet number are skipped.
func (d *Dir) All(states ...sheet.State) ([]sheet.Ref, error) {
	refs := make([]sheet.Ref, 0)
	for _, st := range states {
		dir := d.StateDir(st)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			productID, number, err := sheet.ParseFilename(name)
			if err != nil {
				log.WithField("file", filepath.Join(dir, name)).Debug("skipped file that is no sheet")
				continue
			}
			refs = append(refs, sheet.Ref{
				Path:        filepath.Join(dir, name),
				ProductID:   productID,
				SheetNumber: number,
				State:       st,
			})
		}
	}
	return refs, nil
}

// Refs lists the stored sheets of one product.
func (d *Dir) Refs(productID string, states ...sheet.State) ([]sheet.Ref, error) {
	all, err := d.All(states...)
	if err != nil {
		return nil, err
	}
	out := make([]sheet.Ref, 0)
	for _, r := range all {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Load reads a listed sheet.
func (d *Dir) Load(ref sheet.Ref) (*sheet.Sheet, error) {
	return sheet.Load(ref.Path, d.Layout)
}

// Index maps every stored sheet to its ref. A sheet found in more than one
// state is reported as an error, since the states must partition the sheets.
func (d *Dir) Index(states ...sheet.State) (map[sheet.Key]sheet.Ref, error) {
	all, err := d.All(states...)
	if err != nil {
		return nil, err
	}
	idx := make(map[sheet.Key]sheet.Ref, len(all))
	for _, r := range all {
		if prev, ok := idx[r.Key()]; ok {
			return nil, fmt.Errorf("sheet %s_%s is stored as %s and %s", r.ProductID, r.SheetNumber, prev.State, r.State)
		}
		idx[r.Key()] = r
	}
	return idx, nil
}
