package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/tagscan/internal/recognize"
	"github.com/ironsheep/tagscan/internal/sheet"
)

// Product is one product on sale in the store.
type Product struct {
	Description     string  `yaml:"description"`
	AmountAndUnit   string  `yaml:"amount_and_unit"`
	GrossSalesPrice float64 `yaml:"gross_sales_price"`
}

// ID is the product id sheets of this product are stored under.
func (p Product) ID() string {
	return sheet.Slugify(p.Description)
}

// Member is a member of the store who tags sheets.
type Member struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Catalog is the product and member list recognition resolves against.
type Catalog struct {
	Currency            string    `yaml:"currency"`
	MaxSheetsPerProduct int       `yaml:"max_sheets_per_product"`
	SheetNumberFormat   string    `yaml:"sheet_number_format"`
	Products            []Product `yaml:"products"`
	Members             []Member  `yaml:"members"`
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Validate reports catalogs recognition cannot work with.
func (c *Catalog) Validate() error {
	if c.MaxSheetsPerProduct <= 0 {
		return fmt.Errorf("max_sheets_per_product must be positive")
	}
	ids := make(map[string]string, len(c.Products))
	for _, p := range c.Products {
		if p.Description == "" {
			return fmt.Errorf("product without description")
		}
		if other, ok := ids[p.ID()]; ok {
			return fmt.Errorf("products %q and %q share the id %q", other, p.Description, p.ID())
		}
		ids[p.ID()] = p.Description
	}
	for _, m := range c.Members {
		if m.ID == "" {
			return fmt.Errorf("member %q without id", m.Name)
		}
	}
	return nil
}

// Candidates implements recognize.CandidateProvider.
func (c *Catalog) Candidates() (recognize.Candidates, error) {
	format := c.SheetNumberFormat
	if format == "" {
		format = "{n}"
	}
	cands := recognize.Candidates{
		SheetNumbers: recognize.SheetNumbers(format, c.MaxSheetsPerProduct),
	}
	for _, p := range c.Products {
		cands.Names = append(cands.Names, p.Description)
		cands.Units = append(cands.Units, p.AmountAndUnit)
		cands.Prices = append(cands.Prices, sheet.FormatPrice(p.GrossSalesPrice, c.Currency))
	}
	for _, m := range c.Members {
		cands.MemberIDs = append(cands.MemberIDs, m.ID)
	}
	return cands, nil
}
