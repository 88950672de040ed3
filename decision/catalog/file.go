package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

type fileCatalog struct {
	Panels    []PanelSpec    `yaml:"panels"`
	Inverters []fileInverter `yaml:"inverters"`
}

type fileInverter struct {
	Brand         string         `yaml:"brand"`
	Models        map[int]string `yaml:"models"`
	WarrantyYears int            `yaml:"warranty_years"`
	Origin        string         `yaml:"origin"`
	PricePerKW    string         `yaml:"price_per_kw"`
}

// LoadFile reads a YAML catalog. Prices are strings so they stay exact.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	inverters := make([]InverterSpec, 0, len(fc.Inverters))
	for _, fi := range fc.Inverters {
		price, err := decimal.NewFromString(fi.PricePerKW)
		if err != nil {
			return nil, solarerrors.NewConfigurationError("inverters.price_per_kw", "inverter %q has invalid price %q", fi.Brand, fi.PricePerKW)
		}
		inverters = append(inverters, InverterSpec{
			Brand:         fi.Brand,
			Models:        fi.Models,
			WarrantyYears: fi.WarrantyYears,
			Origin:        fi.Origin,
			PricePerKW:    price,
		})
	}
	return New(fc.Panels, inverters)
}
