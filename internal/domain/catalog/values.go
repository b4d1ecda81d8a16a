package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/neomorfeo/nexcart/internal/domain/shared"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Sku is a normalized stock keeping unit code.
type Sku string

func ParseSku(s string) (Sku, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", &shared.ValidationError{Field: "sku", Reason: "is required"}
	}
	if len(s) < 3 || len(s) > 50 {
		return "", &shared.ValidationError{Field: "sku", Reason: "must be between 3 and 50 characters"}
	}
	if !skuPattern.MatchString(s) {
		return "", &shared.ValidationError{Field: "sku", Reason: fmt.Sprintf("%q may only contain letters, digits and hyphens", s)}
	}
	return Sku(s), nil
}

func (s Sku) String() string { return string(s) }

func (s *Sku) UnmarshalText(b []byte) error {
	parsed, err := ParseSku(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rating is the running average of review stars.
type Rating struct {
	value decimal.Decimal
	count int
}

var maxRating = decimal.NewFromInt(5)

func EmptyRating() Rating {
	return Rating{value: decimal.Zero}
}

func NewRating(value decimal.Decimal, count int) (Rating, error) {
	if value.IsNegative() || value.GreaterThan(maxRating) {
		return Rating{}, &shared.ValidationError{Field: "rating", Reason: "must be between 0 and 5"}
	}
	if count < 0 {
		return Rating{}, &shared.ValidationError{Field: "rating_count", Reason: "must not be negative"}
	}
	return Rating{value: value, count: count}, nil
}

func (r Rating) Value() decimal.Decimal { return r.value }
func (r Rating) Count() int { return r.count }

// AddReview folds stars (1 to 5) into the average.
func (r Rating) AddReview(stars int) (Rating, error) {
	if stars < 1 || stars > 5 {
		return r, &shared.ValidationError{Field: "stars", Reason: "must be between 1 and 5"}
	}
	total := r.value.Mul(decimal.NewFromInt(int64(r.count))).Add(decimal.NewFromInt(int64(stars)))
	count := r.count + 1
	return Rating{value: total.Div(decimal.NewFromInt(int64(count))).Round(2), count: count}, nil
}

type ratingJSON struct {
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(ratingJSON{Value: r.value, Count: r.count})
}

func (r *Rating) UnmarshalJSON(b []byte) error {
	var raw ratingJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewRating(raw.Value, raw.Count)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// WeightUnit is a unit of mass.
type WeightUnit string

const (
	Grams     WeightUnit = "g"
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lb"
	Ounces    WeightUnit = "oz"
)

var kilogramsPer = map[WeightUnit]float64{
	Grams:     0.001,
	Kilograms: 1,
	Pounds:    0.453592,
	Ounces:    0.0283495,
}

// Weight is a non-negative mass.
type Weight struct {
	value float64
	unit  WeightUnit
}

func NewWeight(value float64, unit WeightUnit) (Weight, error) {
	if value < 0 || math.IsNaN(value) {
		return Weight{}, &shared.ValidationError{Field: "weight", Reason: "must not be negative"}
	}
	if unit == "" {
		unit = Kilograms
	}
	unit = WeightUnit(strings.ToLower(string(unit)))
	if _, ok := kilogramsPer[unit]; !ok {
		return Weight{}, &shared.ValidationError{Field: "weight_unit", Reason: fmt.Sprintf("unsupported unit %q", unit)}
	}
	return Weight{value: value, unit: unit}, nil
}

func (w Weight) Value() float64 { return w.value }
func (w Weight) Unit() WeightUnit { return w.unit }

// ConvertTo expresses w in another unit.
func (w Weight) ConvertTo(unit WeightUnit) (Weight, error) {
	target, err := NewWeight(0, unit)
	if err != nil {
		return Weight{}, err
	}
	kg := w.value * kilogramsPer[w.unit]
	return Weight{value: kg / kilogramsPer[target.unit], unit: target.unit}, nil
}

func (w Weight) String() string { return fmt.Sprintf("%g %s", w.value, w.unit) }

type weightJSON struct {
	Value float64    `json:"value"`
	Unit  WeightUnit `json:"unit"`
}

func (w Weight) MarshalJSON() ([]byte, error) {
	return json.Marshal(weightJSON{Value: w.value, Unit: w.unit})
}

func (w *Weight) UnmarshalJSON(b []byte) error {
	var raw weightJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewWeight(raw.Value, raw.Unit)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Dimensions are the package measures of a product.
type Dimensions struct {
	length float64
	width  float64
	height float64
	unit   string
}

var lengthUnits = map[string]bool{"cm": true, "m": true, "in": true}

func NewDimensions(length, width, height float64, unit string) (Dimensions, error) {
	if !(length > 0 && width > 0 && height > 0) || math.IsInf(length*width*height, 0) {
		return Dimensions{}, &shared.ValidationError{Field: "dimensions", Reason: "length, width and height must be greater than zero"}
	}
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		unit = "cm"
	}
	if !lengthUnits[unit] {
		return Dimensions{}, &shared.ValidationError{Field: "dimensions_unit", Reason: fmt.Sprintf("unsupported unit %q", unit)}
	}
	return Dimensions{length: length, width: width, height: height, unit: unit}, nil
}

func (d Dimensions) Length() float64 { return d.length }
func (d Dimensions) Width() float64 { return d.width }
func (d Dimensions) Height() float64 { return d.height }
func (d Dimensions) Unit() string { return d.unit }

func (d Dimensions) Volume() float64 { return d.length * d.width * d.height }

func (d Dimensions) String() string {
	return fmt.Sprintf("%gx%gx%g %s", d.length, d.width, d.height, d.unit)
}

type dimensionsJSON struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

func (d Dimensions) MarshalJSON() ([]byte, error) {
	return json.Marshal(dimensionsJSON{Length: d.length, Width: d.width, Height: d.height, Unit: d.unit})
}

func (d *Dimensions) UnmarshalJSON(b []byte) error {
	var raw dimensionsJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := NewDimensions(raw.Length, raw.Width, raw.Height, raw.Unit)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
