package layout

import "math"

// validSize reports whether s is usable as a proportional weight.
func validSize(s float64) bool {
	return !math.IsNaN(s) && !math.IsInf(s, 0) && s > 0
}

// sumSizes returns the sum of the children's sizes.
func sumSizes(children []ChildRef) float64 {
	var sum float64
	for _, c := range children {
		sum += c.Size
	}
	return sum
}

// coerceSizes replaces every missing, NaN, infinite, zero, or negative size
// with an equal share of 1/n. It returns the number of sizes replaced.
func coerceSizes(children []ChildRef) int {
	var coerced int
	share := 1 / float64(len(children))
	for i := range children {
		if !validSize(children[i].Size) {
			children[i].Size = share
			coerced++
		}
	}
	return coerced
}

// renormalize scales the sizes so they sum to 1. Sizes must already be valid.
func renormalize(children []ChildRef) {
	sum := sumSizes(children)
	if sum <= 0 {
		return
	}
	for i := range children {
		children[i].Size /= sum
	}
}

// normalized reports whether the sizes are valid and sum to 1 within a tight
// tolerance. It is stricter than [SizeEpsilon] so that normalizing an already
// normalized row is a no-op.
func normalized(children []ChildRef) bool {
	for _, c := range children {
		if !validSize(c.Size) {
			return false
		}
	}
	return math.Abs(sumSizes(children)-1) <= 1e-12
}

// repairSizes coerces malformed sizes and renormalizes if needed. It returns
// the number of coerced sizes and whether anything changed.
func repairSizes(children []ChildRef) (coerced int, changed bool) {
	if len(children) == 0 || normalized(children) {
		return 0, false
	}
	coerced = coerceSizes(children)
	renormalize(children)
	return coerced, true
}
