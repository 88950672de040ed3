package yield

import (
	"fmt"
	"strings"
)

// Shading is a coarse shading-loss category chosen by the user.
type Shading string

const (
	ShadingNone     Shading = "none"
	ShadingLight    Shading = "light"
	ShadingModerate Shading = "moderate"
)

// ParseShading accepts a category name; empty means none.
func ParseShading(s string) (Shading, error) {
	switch sh := Shading(strings.ToLower(strings.TrimSpace(s))); sh {
	case "", ShadingNone:
		return ShadingNone, nil
	case ShadingLight, ShadingModerate:
		return sh, nil
	}
	return "", fmt.Errorf("unknown shading category %q (want none, light or moderate)", s)
}

// Loss returns the fractional production loss of the category.
func (s Shading) Loss() float64 {
	switch s {
	case ShadingLight:
		return 0.10
	case ShadingModerate:
		return 0.20
	}
	return 0
}

// ApplyShading scales yearly and monthly production by 1 - loss.
func ApplyShading(e Estimate, s Shading) Estimate {
	loss := s.Loss()
	if loss == 0 {
		return e.clone()
	}
	out := e.clone()
	out.YearlyKWh = e.YearlyKWh * (1 - loss)
	for m, v := range out.MonthlyKWh {
		out.MonthlyKWh[m] = v * (1 - loss)
	}
	return out
}
