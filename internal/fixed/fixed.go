// Package fixed implements the 17.14 fixed-point arithmetic the
// advanced scheduler's load average and recent-CPU estimates run on.
// Nothing in the retrieved pack carries a fixed-point dependency for
// this domain, and the collaborator spec.md describes for this is
// explicitly out of scope as something to call into rather than
// reimplement — there is simply nothing to call into on a hosted Go
// target, so this is the minimal type that stands in for it.
package fixed

const fractionalBits = 14
const scale = 1 << fractionalBits

// F is a signed 17.14 fixed-point number.
type F int32

// FromInt converts a whole number into fixed-point.
func FromInt(n int) F { return F(n * scale) }

// Add returns a+b.
func (a F) Add(b F) F { return a + b }

// Sub returns a-b.
func (a F) Sub(b F) F { return a - b }

// AddInt returns a+n.
func (a F) AddInt(n int) F { return a + FromInt(n) }

// SubInt returns a-n.
func (a F) SubInt(n int) F { return a - FromInt(n) }

// Mul returns a*b.
func (a F) Mul(b F) F { return F((int64(a) * int64(b)) / scale) }

// MulInt returns a*n.
func (a F) MulInt(n int) F { return a * F(n) }

// Div returns a/b.
func (a F) Div(b F) F { return F((int64(a) * scale) / int64(b)) }

// DivInt returns a/n.
func (a F) DivInt(n int) F { return a / F(n) }

// Round converts to the nearest integer, rounding halves away from zero.
func (a F) Round() int {
	if a >= 0 {
		return int(a+scale/2) / scale
	}
	return int(a-scale/2) / scale
}

// Trunc converts to an integer, truncating toward zero.
func (a F) Trunc() int { return int(a) / scale }
