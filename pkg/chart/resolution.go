package chart

import "fmt"

// GCD returns the greatest common divisor of a and b using the subtraction
// form of Euclid's algorithm. Both arguments must be positive; the loop would
// never terminate on a zero operand, so a violation panics instead.
func GCD(a, b int) int {
	if a <= 0 || b <= 0 {
		panic(fmt.Sprintf("chart.GCD: operands must be positive, got %d and %d", a, b))
	}
	for a != b {
		if a > b {
			a -= b
		} else {
			b -= a
		}
	}
	return a
}

// LCM returns the least common multiple of a and b. Same precondition as GCD.
func LCM(a, b int) int {
	return a / GCD(a, b) * b
}
