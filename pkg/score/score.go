// Package score provides bounded numeric wrapper types used across record
// constructors. Values are validated once, at construction, so readers never
// re-check ranges.
package score

import "github.com/knowbase/faqprov/pkg/faqerrors"

// Fraction is a value in [0.0, 1.0]. Construct through NewFraction.
type Fraction float64

// NewFraction validates v against [0.0, 1.0]. field names the record field
// being constructed so validation failures point at the right place.
func NewFraction(field string, v float64) (Fraction, error) {
	if v < 0.0 || v > 1.0 {
		return 0, faqerrors.Validationf(field, "must be in [0.0, 1.0], got %v", v)
	}
	return Fraction(v), nil
}

// NewFractionPtr validates v and returns it as an optional Fraction.
// A nil input stays nil.
func NewFractionPtr(field string, v *float64) (*Fraction, error) {
	if v == nil {
		return nil, nil
	}
	f, err := NewFraction(field, *v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Float returns the underlying float64.
func (f Fraction) Float() float64 { return float64(f) }

// Percent is a value in [0.0, 100.0]. Construct through NewPercent.
type Percent float64

// NewPercent validates v against [0.0, 100.0].
func NewPercent(field string, v float64) (Percent, error) {
	if v < 0.0 || v > 100.0 {
		return 0, faqerrors.Validationf(field, "must be in [0.0, 100.0], got %v", v)
	}
	return Percent(v), nil
}

// NewPercentPtr validates v and returns it as an optional Percent.
func NewPercentPtr(field string, v *float64) (*Percent, error) {
	if v == nil {
		return nil, nil
	}
	p, err := NewPercent(field, *v)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Float returns the underlying float64.
func (p Percent) Float() float64 { return float64(p) }
