// Package catalog holds the panel and inverter reference tables.
// A Catalog is validated once when built and never mutated afterwards.
package catalog

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	solarerrors "github.com/sadeghmontazeri/solar/pkg/errors"
)

// Origin tags where a product is manufactured.
type Origin string

const (
	OriginAll      Origin = ""
	OriginForeign  Origin = "foreign"
	OriginDomestic Origin = "domestic"
)

// Valid reports whether o is a known origin filter.
func (o Origin) Valid() bool {
	return o == OriginAll || o == OriginForeign || o == OriginDomestic
}

// PowerRange is an inclusive nameplate power range in watts.
type PowerRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether w lies in the range.
func (r PowerRange) Contains(w int) bool { return w >= r.Min && w <= r.Max }

// PanelSpec describes a module family.
type PanelSpec struct {
	Name         string     `json:"name" yaml:"name"`
	Power        PowerRange `json:"power_range" yaml:"power_range"`
	DefaultPower int        `json:"default_power" yaml:"default_power"`
	LengthMM     int        `json:"length_mm" yaml:"length_mm"`
	WidthMM      int        `json:"width_mm" yaml:"width_mm"`
	ThicknessMM  int        `json:"thickness_mm" yaml:"thickness_mm"`
	AreaM2       float64    `json:"area_m2" yaml:"area_m2"`
	Efficiency   float64    `json:"efficiency_pct" yaml:"efficiency_pct"`
	Origin       Origin     `json:"origin" yaml:"origin"`
}

// ClampPower forces w into the panel's power range.
func (p PanelSpec) ClampPower(w int) int {
	if w < p.Power.Min {
		return p.Power.Min
	}
	if w > p.Power.Max {
		return p.Power.Max
	}
	return w
}

// InverterSpec describes a brand and its discrete model sizes.
type InverterSpec struct {
	Brand         string          `json:"brand" yaml:"brand"`
	Models        map[int]string  `json:"models" yaml:"models"` // nominal kW -> model name
	WarrantyYears int             `json:"warranty_years" yaml:"warranty_years"`
	Origin        string          `json:"origin" yaml:"origin"`
	PricePerKW    decimal.Decimal `json:"price_per_kw" yaml:"-"`
}

// Sizes returns the available nominal sizes in ascending order.
func (i InverterSpec) Sizes() []int {
	sizes := make([]int, 0, len(i.Models))
	for s := range i.Models {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}

func (i InverterSpec) clone() InverterSpec {
	models := make(map[int]string, len(i.Models))
	for k, v := range i.Models {
		models[k] = v
	}
	i.Models = models
	return i
}

// Catalog is a validated, read-only set of panels and inverters.
type Catalog struct {
	panels      []PanelSpec
	panelIdx    map[string]int
	inverters   []InverterSpec
	inverterIdx map[string]int
}

// New validates the tables and returns a catalog that keeps their insertion order.
func New(panels []PanelSpec, inverters []InverterSpec) (*Catalog, error) {
	c := &Catalog{
		panels:      make([]PanelSpec, 0, len(panels)),
		panelIdx:    make(map[string]int, len(panels)),
		inverters:   make([]InverterSpec, 0, len(inverters)),
		inverterIdx: make(map[string]int, len(inverters)),
	}

	for _, p := range panels {
		if err := validatePanel(p); err != nil {
			return nil, err
		}
		if _, dup := c.panelIdx[p.Name]; dup {
			return nil, solarerrors.NewConfigurationError("panels", "duplicate panel %q", p.Name)
		}
		c.panelIdx[p.Name] = len(c.panels)
		c.panels = append(c.panels, p)
	}

	for _, inv := range inverters {
		if err := validateInverter(inv); err != nil {
			return nil, err
		}
		if _, dup := c.inverterIdx[inv.Brand]; dup {
			return nil, solarerrors.NewConfigurationError("inverters", "duplicate inverter brand %q", inv.Brand)
		}
		c.inverterIdx[inv.Brand] = len(c.inverters)
		c.inverters = append(c.inverters, inv.clone())
	}

	return c, nil
}

func validatePanel(p PanelSpec) error {
	switch {
	case p.Name == "":
		return solarerrors.NewConfigurationError("panels.name", "panel without a name")
	case p.AreaM2 <= 0:
		return solarerrors.NewConfigurationError("panels.area_m2", "panel %q has non-positive area %v", p.Name, p.AreaM2)
	case p.Power.Min <= 0 || p.Power.Min > p.Power.Max:
		return solarerrors.NewConfigurationError("panels.power_range", "panel %q has invalid power range %d-%d", p.Name, p.Power.Min, p.Power.Max)
	case !p.Power.Contains(p.DefaultPower):
		return solarerrors.NewConfigurationError("panels.default_power", "panel %q default power %d outside %d-%d", p.Name, p.DefaultPower, p.Power.Min, p.Power.Max)
	case p.Origin != OriginForeign && p.Origin != OriginDomestic:
		return solarerrors.NewConfigurationError("panels.origin", "panel %q has unknown origin %q", p.Name, p.Origin)
	}
	return nil
}

func validateInverter(inv InverterSpec) error {
	if inv.Brand == "" {
		return solarerrors.NewConfigurationError("inverters.brand", "inverter without a brand")
	}
	if len(inv.Models) == 0 {
		return solarerrors.NewConfigurationError("inverters.models", "inverter %q has an empty size table", inv.Brand)
	}
	for size := range inv.Models {
		if size <= 0 {
			return solarerrors.NewConfigurationError("inverters.models", "inverter %q has non-positive size %d", inv.Brand, size)
		}
	}
	if inv.PricePerKW.IsNegative() {
		return solarerrors.NewConfigurationError("inverters.price_per_kw", "inverter %q has negative price", inv.Brand)
	}
	return nil
}

// Panels returns the panels matching the origin filter, in catalog order.
func (c *Catalog) Panels(origin Origin) []PanelSpec {
	out := make([]PanelSpec, 0, len(c.panels))
	for _, p := range c.panels {
		if origin == OriginAll || p.Origin == origin {
			out = append(out, p)
		}
	}
	return out
}

// Panel looks a panel up by name.
func (c *Catalog) Panel(name string) (PanelSpec, bool) {
	i, ok := c.panelIdx[name]
	if !ok {
		return PanelSpec{}, false
	}
	return c.panels[i], true
}

// Inverters returns all inverter brands in catalog order.
func (c *Catalog) Inverters() []InverterSpec {
	out := make([]InverterSpec, len(c.inverters))
	for i, inv := range c.inverters {
		out[i] = inv.clone()
	}
	return out
}

// Inverter looks a brand up by name.
func (c *Catalog) Inverter(brand string) (InverterSpec, bool) {
	i, ok := c.inverterIdx[brand]
	if !ok {
		return InverterSpec{}, false
	}
	return c.inverters[i].clone(), true
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide built-in catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(builtinPanels(), builtinInverters())
		if err != nil {
			panic("catalog: built-in tables are invalid: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
