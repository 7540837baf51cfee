package types

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidSymbol    = errors.New("invalid symbol")
)

// Direction is the comparison sense of an alert threshold.
type Direction int

const (
	AtOrAbove Direction = iota + 1
	AtOrBelow
)

// ParseDirection accepts the comparison tokens users type in chat.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ">=", "above":
		return AtOrAbove, nil
	case "<=", "below":
		return AtOrBelow, nil
	}
	return 0, errors.Wrapf(ErrInvalidDirection, "%q", s)
}

func (d Direction) Valid() bool {
	return d == AtOrAbove || d == AtOrBelow
}

func (d Direction) String() string {
	switch d {
	case AtOrAbove:
		return ">="
	case AtOrBelow:
		return "<="
	}
	return "?"
}

// Satisfied reports whether price meets target in this direction.
func (d Direction) Satisfied(price, target decimal.Decimal) bool {
	switch d {
	case AtOrAbove:
		return price.GreaterThanOrEqual(target)
	case AtOrBelow:
		return price.LessThanOrEqual(target)
	}
	return false
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.Wrapf(ErrInvalidDirection, "%d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Targets outside this scale would make every comparison in the match loop
// rescale huge integers.
const (
	maxThresholdExponent = 18
	maxThresholdDigits   = 30
)

// ParseThreshold parses a user supplied price target.
func ParseThreshold(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "₹"))
	s = strings.ReplaceAll(s, ",", "")
	target, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidThreshold, "%q", s)
	}
	if err := ValidateThreshold(target); err != nil {
		return decimal.Zero, errors.Wrapf(err, "%q", s)
	}
	return target, nil
}

func ThresholdFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, errors.Wrapf(ErrInvalidThreshold, "%v", f)
	}
	target := decimal.NewFromFloat(f)
	if err := ValidateThreshold(target); err != nil {
		return decimal.Zero, errors.Wrapf(err, "%v", f)
	}
	return target, nil
}

// ValidateThreshold rejects negative targets and targets whose exponent or
// precision is out of range. It never formats target, which may be huge.
func ValidateThreshold(target decimal.Decimal) error {
	if target.IsNegative() {
		return errors.Wrap(ErrInvalidThreshold, "negative")
	}
	if exp := target.Exponent(); exp < -maxThresholdExponent || exp > maxThresholdExponent {
		return errors.Wrapf(ErrInvalidThreshold, "exponent %d out of range", exp)
	}
	if digits := len(target.Coefficient().String()); digits > maxThresholdDigits {
		return errors.Wrapf(ErrInvalidThreshold, "%d significant digits", digits)
	}
	return nil
}

// Alert is a single watch condition owned by a chat.
type Alert struct {
	ID        int64           `json:"identity"`
	Owner     int64           `json:"-"`
	Symbol    string          `json:"symbol"`
	Direction Direction       `json:"direction"`
	Target    decimal.Decimal `json:"target"`
	CreatedAt time.Time       `json:"created_at"`
}
