// Package dice provides the randomness abstraction behind capture attempts.
//
// Every draw is a percentile in [0, 100). A capture succeeds when the draw is
// strictly below the creature's capture chance.
package dice

// Sides is the number of faces on the percentile die.
const Sides = 100

// Source is the randomness provider for capture draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Percentile draws a single value in [0, 100) from src.
//
// Precondition: src must be non-nil.
// Postcondition: 0 <= result < 100.
func Percentile(src Source) int {
	return src.Intn(Sides)
}
