package model

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// Stat is a single performance statistic supplied by the backtesting
// service. The service emits either a JSON number, the string "N/A", or
// null depending on whether the statistic could be computed; an absent or
// non-finite value displays as "N/A".
type Stat struct {
	Value float64
	Valid bool
}

// StatOf wraps a plain number as a defined statistic.
func StatOf(v float64) Stat {
	return Stat{Value: v, Valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

// Display renders the statistic to two decimal places, or "N/A" when it is
// undefined.
func (s Stat) Display() string {
	if !s.Valid || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return "N/A"
	}
	return decimal.NewFromFloat(s.Value).StringFixed(2)
}

// UnmarshalJSON accepts a number, "N/A", "NaN", or null.
func (s *Stat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = Stat{}
		return nil
	}
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		// "N/A", "NaN" and friends all mean undefined.
		*s = Stat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = StatOf(v)
	return nil
}

// MarshalJSON emits the number, or "N/A" when undefined.
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Valid || math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return []byte(`"N/A"`), nil
	}
	return json.Marshal(s.Value)
}
