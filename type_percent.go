package reviews

import (
	"fmt"
	"math"
)

// Percent is a percentage value. NaN means "undefined", e.g. a return over a
// period with no flows.
type Percent float64

// Undefined returns the undefined percent value.
func Undefined() Percent { return Percent(math.NaN()) }

// IsDefined reports whether p holds an actual value.
func (p Percent) IsDefined() bool { return !math.IsNaN(float64(p)) }

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	if !p.IsDefined() || !q.IsDefined() {
		return p.IsDefined() == q.IsDefined()
	}
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	if !p.IsDefined() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	if !p.IsDefined() {
		return "n/a"
	}
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}
